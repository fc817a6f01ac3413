package trading

import "github.com/efreitasn/tradecore/internal/domain"

// Session binds a caller identity to a Manager so owner-scoped operations
// need not repeat it. A Session is as safe for concurrent use as its
// Manager, but transactions are per owner: two goroutines sharing one
// Session share one transaction slot.
type Session struct {
	owner   domain.OwnerID
	manager *Manager
}

// NewSession returns a Session with a fresh owner identity.
func (m *Manager) NewSession() *Session {
	return &Session{owner: domain.NewOwnerID(), manager: m}
}

// SessionFor returns a Session bound to an existing owner identity.
func (m *Manager) SessionFor(owner domain.OwnerID) *Session {
	return &Session{owner: owner, manager: m}
}

// Owner returns the session's identity.
func (s *Session) Owner() domain.OwnerID {
	return s.owner
}

// SubmitOrder submits order on behalf of the session owner.
func (s *Session) SubmitOrder(order domain.Order) bool {
	return s.manager.SubmitOrder(s.owner, order)
}

// CancelOrder cancels orderID on behalf of the session owner.
func (s *Session) CancelOrder(orderID string) bool {
	return s.manager.CancelOrder(s.owner, orderID)
}

// Begin opens the session's transaction.
func (s *Session) Begin() bool {
	return s.manager.BeginTransaction(s.owner)
}

// Commit commits the session's open transaction.
func (s *Session) Commit() bool {
	return s.manager.CommitTransaction(s.owner)
}

// Rollback rolls back the session's open transaction.
func (s *Session) Rollback() bool {
	return s.manager.RollbackTransaction(s.owner)
}
