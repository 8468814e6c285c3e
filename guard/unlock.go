package guard

// Unlocker tracks the attribute names currently exempted from locking
// on a single record instance. The zero value is ready to use; host
// record types embed it to satisfy record.Unlockable.
//
// The set is created lazily on the first unlock and released again when
// no unlock is active, so idle records carry no allocation. An Unlocker
// belongs to exactly one instance and must not be shared; concurrent
// overlapping unlock scopes on the same instance are as undefined as
// any other unsynchronized mutation of that instance.
type Unlocker struct {
	unlocked map[string]struct{}
}

// UnlockAttributes exempts the given attributes from locking until
// ClearUnlockedAttributes is called. Calling it with no names is a
// no-op and does not allocate.
func (u *Unlocker) UnlockAttributes(names ...string) {
	if len(names) == 0 {
		return
	}
	if u.unlocked == nil {
		u.unlocked = make(map[string]struct{}, len(names))
	}
	for _, name := range names {
		u.unlocked[name] = struct{}{}
	}
}

// UnlockAttributesDuring exempts the given attributes for the duration
// of body, then restores the previously active set on every exit path,
// including panics. Nested calls compose: exiting an inner scope
// restores exactly the outer scope's set. If the restored set is empty
// the Unlocker returns to its unallocated state.
//
// With an empty name list body still runs, with no additional
// attributes unlocked.
func (u *Unlocker) UnlockAttributesDuring(names []string, body func() error) error {
	if body == nil {
		return nil
	}
	if len(names) == 0 {
		return body()
	}

	saved := u.unlocked
	merged := make(map[string]struct{}, len(saved)+len(names))
	for name := range saved {
		merged[name] = struct{}{}
	}
	for _, name := range names {
		merged[name] = struct{}{}
	}
	u.unlocked = merged

	defer func() {
		if len(saved) == 0 {
			u.unlocked = nil
		} else {
			u.unlocked = saved
		}
	}()

	return body()
}

// ClearUnlockedAttributes unconditionally relocks everything, regardless
// of nesting depth. It is an escape hatch, not meant to be called from
// inside an active scoped unlock.
func (u *Unlocker) ClearUnlockedAttributes() {
	u.unlocked = nil
}

// AttributeUnlocked reports whether the named attribute is currently
// exempted from locking on this instance.
func (u *Unlocker) AttributeUnlocked(name string) bool {
	if u.unlocked == nil {
		return false
	}
	_, ok := u.unlocked[name]
	return ok
}

// UnlockedAttributeNames returns the currently exempted attribute
// names. Order is unspecified.
func (u *Unlocker) UnlockedAttributeNames() []string {
	if len(u.unlocked) == 0 {
		return nil
	}
	names := make([]string, 0, len(u.unlocked))
	for name := range u.unlocked {
		names = append(names, name)
	}
	return names
}
