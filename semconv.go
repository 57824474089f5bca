package otelquery

import "go.opentelemetry.io/otel/attribute"

// Instruments.
const (
	dbSQLClientLatencyMs = "db.sql.client.latency"
	dbSQLClientCalls     = "db.sql.client.calls"
)

// Attributes that are not part of the semantic conventions yet.
const (
	dbInstance     = attribute.Key("db.instance")
	dbQuerySummary = attribute.Key("db.query.summary")
	dbSQLStatus    = attribute.Key("db.sql.status")
	dbSQLError     = attribute.Key("db.sql.error")
)

var (
	dbSQLStatusOK    = dbSQLStatus.String("OK")
	dbSQLStatusERROR = dbSQLStatus.String("ERROR")
)
