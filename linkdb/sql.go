package linkdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	_ "github.com/go-sql-driver/mysql"
	log "github.com/sirupsen/logrus"
)

var identifier = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// SQLStore keeps the linkage in the billing system's service table.  The ids live in the JSON
// array column <prefix>_extra as [account_id, subscription_id], next to <prefix>_ip and
// <prefix>_username.  A follow-up note is kept as a third entry of the array.
type SQLStore struct {
	DB     *sql.DB
	Table  string // e.g. websites
	Prefix string // column prefix, e.g. website
}

func NewSQLStore(db *sql.DB, table, prefix string) (*SQLStore, error) {
	if !identifier.MatchString(table) || !identifier.MatchString(prefix) {
		return nil, fmt.Errorf("invalid service table %q or prefix %q", table, prefix)
	}
	return &SQLStore{DB: db, Table: table, Prefix: prefix}, nil
}

// SQLConnect opens and checks a MySQL connection from a DSN such as
// user:password@tcp(host:3306)/billing
func SQLConnect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("Connected to SQL server")
	return db, nil
}

func (s *SQLStore) PersistLinkage(ctx context.Context, l Linkage) error {
	if l.ServiceID == "" {
		return ErrNoServiceID
	}
	extra, err := json.Marshal(encodeExtra(l))
	if err != nil {
		return err
	}
	query := fmt.Sprintf("UPDATE %s SET %s_extra=?, %s_ip=?, %s_username=? WHERE %s_id=?", s.Table, s.Prefix, s.Prefix, s.Prefix, s.Prefix)
	result, err := s.DB.ExecContext(ctx, query, string(extra), l.IP, l.Username, l.ServiceID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		log.Warnf("Linkage update for service %s touched no rows", l.ServiceID)
	}
	return nil
}

func (s *SQLStore) ReadLinkage(ctx context.Context, serviceID string) (Linkage, error) {
	l := Linkage{ServiceID: serviceID}
	query := fmt.Sprintf("SELECT %s_extra, %s_ip, %s_username FROM %s WHERE %s_id=?", s.Prefix, s.Prefix, s.Prefix, s.Table, s.Prefix)
	var extra, ip, username sql.NullString
	err := s.DB.QueryRowContext(ctx, query, serviceID).Scan(&extra, &ip, &username)
	if errors.Is(err, sql.ErrNoRows) {
		return l, nil
	}
	if err != nil {
		return l, err
	}
	l.IP = ip.String
	l.Username = username.String
	if extra.String != "" {
		l.AccountID, l.SubscriptionID, l.FollowUp, err = decodeExtra(extra.String)
		if err != nil {
			log.Errorf("Unreadable extra for service %s: %s", serviceID, spew.Sdump(extra.String))
			return l, err
		}
	}
	return l, nil
}

func encodeExtra(l Linkage) []interface{} {
	switch {
	case l.FollowUp != "":
		return []interface{}{l.AccountID, l.SubscriptionID, l.FollowUp}
	case l.SubscriptionID > 0:
		return []interface{}{l.AccountID, l.SubscriptionID}
	case l.AccountID > 0:
		return []interface{}{l.AccountID}
	}
	return []interface{}{}
}

// decodeExtra accepts numbers or numeric strings, older rows were written with strings.
func decodeExtra(extra string) (account, subscription int64, followUp string, err error) {
	var values []interface{}
	if err = json.Unmarshal([]byte(extra), &values); err != nil {
		return 0, 0, "", fmt.Errorf("service extra is not a json array: %w", err)
	}
	if len(values) > 2 {
		followUp, _ = values[2].(string)
	}
	ids := make([]int64, 2)
	for i := 0; i < len(values) && i < 2; i++ {
		switch v := values[i].(type) {
		case float64:
			ids[i] = int64(v)
		case string:
			if v == "" {
				continue
			}
			if ids[i], err = strconv.ParseInt(v, 10, 64); err != nil {
				return 0, 0, "", fmt.Errorf("service extra entry %d: %w", i, err)
			}
		}
	}
	return ids[0], ids[1], followUp, nil
}
