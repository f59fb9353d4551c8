package workbench

type Level int

const (
	Info Level = iota
	Error
)

func (l Level) String() string {
	if l == Error {
		return "error"
	}
	return "info"
}

// Notice is a short message for the user, shown transiently by the shells.
type Notice struct {
	Level   Level
	Message string
}

// Listener receives notices. Listeners run in registration order on the
// goroutine that produced the notice.
type Listener interface {
	Notify(Notice)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Notice)

func (f ListenerFunc) Notify(n Notice) { f(n) }

func (w *Workbench) AddListener(l Listener) {
	w.mu.Lock()
	w.listeners = append(w.listeners, l)
	w.mu.Unlock()
}

func (w *Workbench) notify(level Level, msg string) {
	w.mu.Lock()
	ls := append([]Listener(nil), w.listeners...)
	w.mu.Unlock()

	n := Notice{Level: level, Message: msg}
	for _, l := range ls {
		l.Notify(n)
	}
}
