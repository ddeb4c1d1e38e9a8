package session

import "log/slog"

// Notifier plays the rest-finished alert (haptics, sound, vibration).
// Calls are best effort: errors are logged and never block a transition.
type Notifier interface {
	Alert() error
	Stop() error
}

// Navigator hands off to another screen after a transition.
type Navigator interface {
	Navigate(screen string, params map[string]string)
}

// ScreenProgramDetails is where a completed session navigates to.
const ScreenProgramDetails = "program-details"

// NopNotifier discards alerts.
type NopNotifier struct{}

func (NopNotifier) Alert() error { return nil }
func (NopNotifier) Stop() error  { return nil }

// LogNotifier records alerts in the log. Used by the server, where the
// client owns the actual sound and haptics.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Alert() error {
	n.Log.Info("rest finished alert")
	return nil
}

func (n LogNotifier) Stop() error {
	n.Log.Debug("rest alert stopped")
	return nil
}

// LogNavigator records navigation requests.
type LogNavigator struct {
	Log *slog.Logger
}

func (n LogNavigator) Navigate(screen string, params map[string]string) {
	args := []any{"screen", screen}
	for k, v := range params {
		args = append(args, k, v)
	}
	n.Log.Info("navigate", args...)
}

type nopNavigator struct{}

func (nopNavigator) Navigate(string, map[string]string) {}
