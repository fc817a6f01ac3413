package trading

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cespare/xxhash/v2"

	"github.com/efreitasn/tradecore/internal/domain"
	"github.com/efreitasn/tradecore/internal/pool"
)

// transactionID builds the identity a transaction is registered under.
func transactionID(pending int64, owner domain.OwnerID) string {
	return fmt.Sprintf("TX_%d_%d", pending, xxhash.Sum64String(string(owner)))
}

// BeginTransaction opens a transaction for owner. It fails when the manager
// is not running, the owner already has one open, or the pool is exhausted.
func (m *Manager) BeginTransaction(owner domain.OwnerID) bool {
	if !m.enter() {
		m.logger.Debug("begin rejected", slog.String("owner", string(owner)), slog.String("error", domain.ErrNotRunning.Error()))
		return false
	}
	defer m.leave()

	if err := m.beginTransaction(owner); err != nil {
		m.logger.Warn("begin transaction failed", slog.String("owner", string(owner)), slog.String("error", err.Error()))
		return false
	}
	return true
}

// CommitTransaction commits owner's open transaction and returns its node
// to the pool. It is accepted while RUNNING or PAUSED.
func (m *Manager) CommitTransaction(owner domain.OwnerID) bool {
	if !m.enterFinish() {
		m.logger.Debug("commit rejected", slog.String("owner", string(owner)), slog.String("error", domain.ErrNotRunning.Error()))
		return false
	}
	defer m.leave()

	if err := m.commitTransaction(owner); err != nil {
		m.logger.Warn("commit transaction failed", slog.String("owner", string(owner)), slog.String("error", err.Error()))
		return false
	}
	return true
}

// RollbackTransaction rolls back owner's open transaction and returns its
// node to the pool. It is accepted while RUNNING or PAUSED.
func (m *Manager) RollbackTransaction(owner domain.OwnerID) bool {
	if !m.enterFinish() {
		m.logger.Debug("rollback rejected", slog.String("owner", string(owner)), slog.String("error", domain.ErrNotRunning.Error()))
		return false
	}
	defer m.leave()

	if err := m.rollbackTransaction(owner); err != nil {
		m.logger.Warn("rollback transaction failed", slog.String("owner", string(owner)), slog.String("error", err.Error()))
		return false
	}
	return true
}

func (m *Manager) beginTransaction(owner domain.OwnerID) (err error) {
	if owner == "" {
		return domain.ErrInvalidOwner
	}

	m.txMu.Lock()
	defer m.txMu.Unlock()
	defer guard(&err)

	m.ownersMu.Lock()
	_, open := m.owners[owner]
	m.ownersMu.Unlock()
	if open {
		return domain.ErrTransactionOpen
	}

	node := m.transactions.Begin()
	if node == nil {
		return fmt.Errorf("transaction pool: %w", domain.ErrPoolExhausted)
	}
	registered := false
	defer func() {
		if !registered {
			m.transactions.End(node)
		}
	}()

	node.Owner = owner
	m.transactions.Register(transactionID(m.pendingTx.Load(), owner), node)

	m.ownersMu.Lock()
	m.owners[owner] = node
	m.ownersMu.Unlock()
	registered = true

	m.pendingTx.Add(1)
	return nil
}

// takeOwner removes and returns owner's node. The caller holds txMu.
func (m *Manager) takeOwner(owner domain.OwnerID) *pool.TxNode {
	m.ownersMu.Lock()
	defer m.ownersMu.Unlock()

	node, ok := m.owners[owner]
	if !ok {
		return nil
	}
	delete(m.owners, owner)
	return node
}

// finishTransaction removes owner's node from the registry, applies finish
// to it if it is still pending, and ends it on every path.
func (m *Manager) finishTransaction(owner domain.OwnerID, finish func(*pool.TxNode) bool) (err error) {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	defer guard(&err)

	node := m.takeOwner(owner)
	if node == nil {
		return domain.ErrNoTransaction
	}
	defer func() {
		m.transactions.End(node)
		decrementFloor(&m.pendingTx)
	}()

	if node.Status != pool.TxPending {
		return fmt.Errorf("transaction %s is %s: %w", node.ID, node.Status, domain.ErrNotPending)
	}
	if !finish(node) {
		return fmt.Errorf("transaction %s: %w", node.ID, domain.ErrNotPending)
	}
	return nil
}

func (m *Manager) commitTransaction(owner domain.OwnerID) error {
	return m.finishTransaction(owner, m.transactions.Commit)
}

func (m *Manager) rollbackTransaction(owner domain.OwnerID) error {
	return m.finishTransaction(owner, m.transactions.Rollback)
}

// rollbackQuietly undoes an internally opened transaction during an unwind.
func (m *Manager) rollbackQuietly(owner domain.OwnerID) {
	if err := m.rollbackTransaction(owner); err != nil && !errors.Is(err, domain.ErrNoTransaction) {
		m.logger.Error("rollback during unwind failed",
			slog.String("owner", string(owner)),
			slog.String("error", err.Error()),
		)
	}
}
