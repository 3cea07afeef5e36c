package canolib

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"io"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// 任务台账：以(操作, 输入内容指纹, 参数)为键记录已完成任务，
// 防止公式或参数变化而文件名未变时的陈旧跳过。
type JobLedger struct {
	db *sql.DB
}

const ledgerDDL = `
CREATE TABLE IF NOT EXISTS jobs (
  op          TEXT NOT NULL,
  fingerprint TEXT NOT NULL,
  params      TEXT NOT NULL,
  output      TEXT NOT NULL,
  finished    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (op, fingerprint, params)
);`

func OpenLedger(path string) (l *JobLedger, err error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return
	}
	if _, err = db.Exec(ledgerDDL); err != nil {
		db.Close()
		return
	}
	l = &JobLedger{db: db}
	return
}

func (l *JobLedger) Close() error {
	return l.db.Close()
}

// 任务是否已按当前指纹与参数完成
func (l *JobLedger) Done(op, fingerprint, params string) (done bool, err error) {
	var one int
	err = l.db.QueryRow(
		`SELECT 1 FROM jobs WHERE op = ? AND fingerprint = ? AND params = ?`,
		op, fingerprint, params).Scan(&one)
	if err == sql.ErrNoRows {
		err = nil
		return
	}
	done = err == nil
	return
}

func (l *JobLedger) Record(op, fingerprint, params, output string) (err error) {
	_, err = l.db.Exec(
		`INSERT INTO jobs (op, fingerprint, params, output) VALUES (?, ?, ?, ?)
		 ON CONFLICT (op, fingerprint, params) DO UPDATE SET output = excluded.output, finished = CURRENT_TIMESTAMP`,
		op, fingerprint, params, output)
	return
}

// 输入文件内容的sha256指纹
func FileFingerprint(path string) (fp string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	h := sha256.New()
	if _, err = io.Copy(h, f); err != nil {
		return
	}
	fp = hex.EncodeToString(h.Sum(nil))
	return
}
