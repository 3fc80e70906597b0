// Package ui contains the Bubble Tea program that powers the fleet console.
// The package is structured so the Model type focuses on message orchestration,
// while dedicated helpers own navigation, list screens, forms, rendering, and
// session handling.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages. Each tea.Msg is
//     routed through a typed handler registry to a focused function, and every
//     returned command is wrapped by command.Guard so a panic surfaces as a
//     message instead of killing the program.
//   - Key presses are dispatched by mode: the sign-in form, record forms, the
//     delete confirmation, the not-found screen, and the menu/list stack.
//   - List screens (internal/ui/listing) own their query state. The model only
//     forwards search input, page keys, and filter changes to the screen of the
//     current level and renders whatever rows the screen reports.
//
// State ownership:
//   - Menu level state lives in internal/ui/state.Level. List levels carry a
//     *listView in Level.Data; row action levels carry a *rowContext.
//   - The signed-in user and the upcoming reservations live in internal/state
//     and are refreshed by the dispatcher from backend watcher events.
//   - Menu actions run through the internal/ui/command bus.
//
// Ordering:
//   - Every asynchronous result carries the sequence number or screen instance
//     that issued it. Results that are no longer the newest for their target
//     are dropped, so a slow response can never overwrite a newer one.
//   - An expired session (HTTP 401) from any request drops all screens and
//     returns to the sign-in form.
package ui
