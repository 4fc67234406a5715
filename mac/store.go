package mac

// MemorySessionStore is an in-memory Session holder satisfying the half
// of System a host backed by durable storage would otherwise implement
// with flash or NVRAM. It is not safe for concurrent use beyond the
// same critical-section discipline the rest of System requires.
type MemorySessionStore struct {
	session Session
	has     bool
}

// RestoreSession returns the last session saved, if any.
func (s *MemorySessionStore) RestoreSession() (Session, bool) {
	return s.session, s.has
}

// SaveSession overwrites the stored session.
func (s *MemorySessionStore) SaveSession(session Session) {
	s.session = session
	s.has = true
}
