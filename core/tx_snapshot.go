package core

// Snapshot records the current pool contents and block gas limit, returning
// an id that Revert accepts exactly once.
func (pool *TxPool) Snapshot() uint64 {
	id := pool.nextSnapshotID
	pool.nextSnapshotID++
	pool.snapshots[id] = pool.current.clone()

	pool.logger.Debug().Uint64("id", id).Msg("Took transaction pool snapshot")
	return id
}

// Revert restores the version recorded under id and invalidates id together
// with every snapshot taken after it. It reports false, leaving the pool
// untouched, when id is unknown or was already invalidated.
func (pool *TxPool) Revert(id uint64) bool {
	state, ok := pool.snapshots[id]
	if !ok {
		return false
	}
	for snapID := range pool.snapshots {
		if snapID >= id {
			delete(pool.snapshots, snapID)
		}
	}
	pool.current = state
	pool.updateGauges()

	pool.logger.Debug().Uint64("id", id).Msg("Reverted transaction pool to snapshot")
	return true
}
