package logging

// Convenience helpers for the hot categories. These keep call sites short:
//
//	logging.Trial("turn %d complete", idx)
//	logging.SessionDebug("round %d: %d tool calls", round, n)

// Session logs at info level to the session category.
func Session(format string, args ...interface{}) {
	Get(CategorySession).Info(format, args...)
}

// SessionDebug logs at debug level to the session category.
func SessionDebug(format string, args ...interface{}) {
	Get(CategorySession).Debug(format, args...)
}

// Trial logs at info level to the trial category.
func Trial(format string, args ...interface{}) {
	Get(CategoryTrial).Info(format, args...)
}

// TrialDebug logs at debug level to the trial category.
func TrialDebug(format string, args ...interface{}) {
	Get(CategoryTrial).Debug(format, args...)
}

// Tools logs at info level to the tools category.
func Tools(format string, args ...interface{}) {
	Get(CategoryTools).Info(format, args...)
}

// ToolsDebug logs at debug level to the tools category.
func ToolsDebug(format string, args ...interface{}) {
	Get(CategoryTools).Debug(format, args...)
}

// Ledger logs at info level to the ledger category.
func Ledger(format string, args ...interface{}) {
	Get(CategoryLedger).Info(format, args...)
}

// LedgerDebug logs at debug level to the ledger category.
func LedgerDebug(format string, args ...interface{}) {
	Get(CategoryLedger).Debug(format, args...)
}

// LLM logs at info level to the llm category.
func LLM(format string, args ...interface{}) {
	Get(CategoryLLM).Info(format, args...)
}

// LLMDebug logs at debug level to the llm category.
func LLMDebug(format string, args ...interface{}) {
	Get(CategoryLLM).Debug(format, args...)
}

// Reconcile logs at info level to the reconcile category.
func Reconcile(format string, args ...interface{}) {
	Get(CategoryReconcile).Info(format, args...)
}

// ReconcileDebug logs at debug level to the reconcile category.
func ReconcileDebug(format string, args ...interface{}) {
	Get(CategoryReconcile).Debug(format, args...)
}

// Store logs at info level to the store category.
func Store(format string, args ...interface{}) {
	Get(CategoryStore).Info(format, args...)
}
