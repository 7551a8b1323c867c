package logger

import "go.uber.org/zap"

// Log is the process-wide sugared logger. Init must run before any handler
// uses it; until then it points at a no-op logger so tests stay quiet.
var Log = zap.NewNop().Sugar()

func Init(development bool) error {
	var (
		base *zap.Logger
		err  error
	)

	if development {
		base, err = zap.NewDevelopment()
	} else {
		base, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}

	Log = base.Sugar()
	return nil
}
