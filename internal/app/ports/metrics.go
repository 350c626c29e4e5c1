package ports

type SessionMetrics interface {
	RecordIntent(kind string, accepted bool)
	RecordOracleFailure(quota bool)
	RecordRaid()
	RecordGameOver()
	RecordConflict()
}
