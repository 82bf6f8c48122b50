package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const timeFormat = "2006/01/02 15:04:05.000000"

var (
	mu      sync.Mutex
	level   = logrus.InfoLevel
	loggers = map[string]*logrus.Logger{}
)

type formatter struct {
	name string
}

func (f formatter) Format(e *logrus.Entry) ([]byte, error) {
	str := fmt.Sprintf("%s %s <%s>: %s",
		e.Time.Format(timeFormat),
		f.name,
		strings.ToUpper(e.Level.String()),
		e.Message)

	if len(e.Data) != 0 {
		str += fmt.Sprintf(" %v", e.Data)
	}

	return []byte(str + "\n"), nil
}

// Get returns the logger mapped to name.
func Get(name string) *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[name]; ok {
		return l
	}

	l := logrus.New()
	l.Out = os.Stderr
	l.Formatter = formatter{name: name}
	l.Level = level
	loggers[name] = l
	return l
}

// SetLevel sets level of all the loggers, including those created later.
func SetLevel(lvl logrus.Level) {
	mu.Lock()
	defer mu.Unlock()

	level = lvl
	for _, l := range loggers {
		l.SetLevel(lvl)
	}
}
