package mesh

// Maintenance advances the engine by one step: at most one link result or
// transmission, at most one incoming frame, at most one parked message, and a
// sweep of the confirmation waits. It never blocks and must be called
// periodically by the owner of the engine.
func (e *Engine) Maintenance() {
	if !e.running.Load() {
		return
	}
	now := e.clock.Now()

	e.checkSendResult(now)
	e.transmitHead(now)
	e.processIncoming(now)
	e.servicePending(now)
	e.sweepConfirmations(now)
}
