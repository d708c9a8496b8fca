package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

var (
	loggerOnce sync.Once
	logger     *log.Logger
)

// Logger returns the process-wide line logger. Every component writes
// single-line JSON through it so log shippers can parse stdout as-is.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.New(os.Stdout, "", 0)
	})
	return logger
}

// LogRequest emits one JSON line for a completed HTTP request. Fields come
// from the caller; the map is marshaled verbatim.
func LogRequest(entry map[string]any) {
	data, err := json.Marshal(entry)
	if err != nil {
		Logger().Printf(`{"ts":%q,"level":"error","msg":"request_log_marshal_failed","error":%q}`,
			time.Now().UTC().Format(time.RFC3339), err.Error())
		return
	}
	Logger().Println(string(data))
}
