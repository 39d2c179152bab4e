package session

import "time"

// SetClock reemplaza el reloj en tests.
func (r *Resolver) SetClock(now func() time.Time) { r.now = now }
