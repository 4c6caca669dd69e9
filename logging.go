package edgar

import "go.uber.org/zap"

// log is the package-level logger. It defaults to a no-op so library
// consumers who never call SetLogger pay no logging cost; SetLogger lets a
// host application substitute its own zap logger. No code in this package
// writes to log.
var log = zap.NewNop().Sugar()

// SetLogger overrides the package-level logger. Passing nil restores the
// no-op default.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		log = zap.NewNop().Sugar()
		return
	}
	log = l
}
