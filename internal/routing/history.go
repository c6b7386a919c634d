package routing

import "sync"

// History is a Navigator that remembers every screen visited.
type History struct {
	mu      sync.Mutex
	screens []Screen
}

// Navigate implements Navigator.
func (h *History) Navigate(s Screen) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.screens = append(h.screens, s)
}

// Current returns the last screen navigated to, or "" if none.
func (h *History) Current() Screen {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.screens) == 0 {
		return ""
	}
	return h.screens[len(h.screens)-1]
}

// Screens returns the visit history in order.
func (h *History) Screens() []Screen {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Screen(nil), h.screens...)
}
