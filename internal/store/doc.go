// Package store provides the SQLite-backed run ledger.
//
// Every generation attempt, successful or not, is appended to the runs
// table with the configuration that produced it, the parameter hash and,
// on success, the bundle digest. Replay reads a row back, regenerates from
// its configuration and compares digests.
//
// Rows are ordered by seq, an autoincrement integer assigned at insert.
// created_at is informational only and never used for ordering. WriteRun
// uses ON CONFLICT(id) DO NOTHING, so writing the same run ID twice keeps
// the first row.
//
// Connections run in WAL mode with synchronous=NORMAL and a 5 s busy
// timeout, set through the driver DSN. Schema changes after the first
// release are numbered migrations tracked in PRAGMA user_version.
package store
