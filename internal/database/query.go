package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
)

// CommandType says how the query text of a raw command is interpreted
type CommandType int

const (
	// CommandText runs the text as-is
	CommandText CommandType = iota
	// CommandStoredProcedure treats the text as a function name and passes
	// the named parameters by name
	CommandStoredProcedure
)

var ErrStoredProcedureUnsupported = errors.New("stored procedures are not supported by this dialect")

var dbMapper = reflectx.NewMapperFunc("db", sqlx.NameMapper)

type queryOptions struct {
	timeout     time.Duration
	commandType CommandType
}

// QueryOption customizes a raw query
type QueryOption func(*queryOptions)

// WithTimeout overrides the configured command timeout
func WithTimeout(d time.Duration) QueryOption {
	return func(o *queryOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithCommandType(t CommandType) QueryOption {
	return func(o *queryOptions) {
		o.commandType = t
	}
}

func (s *Session) queryOptions(opts []QueryOption) queryOptions {
	o := queryOptions{timeout: s.db.opts.CommandTimeout, commandType: CommandText}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Query runs a raw SQL statement with named parameters (:name) taken from
// arg, a struct with db tags or a map, and scans every row into T. T is a
// struct with db tags or a single-column type such as string or int64. It
// runs on the session's transaction when one is active.
func Query[T any](ctx context.Context, s *Session, query string, arg interface{}, opts ...QueryOption) ([]T, error) {
	o := s.queryOptions(opts)
	q, args, err := s.compile(query, arg, o.commandType, true)
	if err != nil {
		return nil, err
	}

	queryer, err := s.queryer()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	out := []T{}
	if err := sqlx.SelectContext(ctx, queryer, &out, q, args...); err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return out, nil
}

// queryer wraps the connection gorm is currently using, the pool or the
// ambient *sql.Tx, for sqlx.
func (s *Session) queryer() (sqlx.QueryerContext, error) {
	switch pool := s.conn().Statement.ConnPool.(type) {
	case *sql.Tx:
		return &sqlx.Tx{Tx: pool, Mapper: dbMapper}, nil
	case *sql.DB:
		db := sqlx.NewDb(pool, s.Dialect())
		db.Mapper = dbMapper
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported connection pool %T", pool)
	}
}

// QueryFirstOrDefault returns the first row of the result, or nil when the
// query returns no rows.
func QueryFirstOrDefault[T any](ctx context.Context, s *Session, query string, arg interface{}, opts ...QueryOption) (*T, error) {
	rows, err := Query[T](ctx, s, query, arg, opts...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Exec runs a raw statement and returns the number of affected rows
func Exec(ctx context.Context, s *Session, query string, arg interface{}, opts ...QueryOption) (int64, error) {
	o := s.queryOptions(opts)
	q, args, err := s.compile(query, arg, o.commandType, false)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	res, err := s.conn().Statement.ConnPool.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute command: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

func (s *Session) compile(query string, arg interface{}, ct CommandType, returnsRows bool) (string, []interface{}, error) {
	if ct == CommandStoredProcedure {
		var err error
		if query, err = procedureCall(s.Dialect(), query, arg, returnsRows); err != nil {
			return "", nil, err
		}
	}
	if arg == nil {
		return query, nil, nil
	}

	q, args, err := sqlx.Named(query, arg)
	if err != nil {
		return "", nil, fmt.Errorf("failed to compile named query: %w", err)
	}
	return sqlx.Rebind(bindType(s.Dialect()), q), args, nil
}

func bindType(dialect string) int {
	switch dialect {
	case "postgres":
		return sqlx.DOLLAR
	case "sqlserver":
		return sqlx.AT
	default:
		return sqlx.QUESTION
	}
}

// procedureCall renders name(p => :p, ...) for postgres. Functions returning
// rows are selected from; procedures are CALLed.
func procedureCall(dialect, name string, arg interface{}, returnsRows bool) (string, error) {
	if dialect != "postgres" {
		return "", fmt.Errorf("%w: %s", ErrStoredProcedureUnsupported, dialect)
	}
	names, err := paramNames(arg)
	if err != nil {
		return "", err
	}

	params := make([]string, 0, len(names))
	for _, n := range names {
		params = append(params, fmt.Sprintf("%s => :%s", n, n))
	}
	call := fmt.Sprintf("%s(%s)", name, strings.Join(params, ", "))
	if returnsRows {
		return "SELECT * FROM " + call, nil
	}
	return "CALL " + call, nil
}

// paramNames lists the parameters of arg: sorted keys for maps, db names in
// field order for structs.
func paramNames(arg interface{}) ([]string, error) {
	if arg == nil {
		return nil, nil
	}
	if m, ok := arg.(map[string]interface{}); ok {
		names := make([]string, 0, len(m))
		for k := range m {
			names = append(names, k)
		}
		sort.Strings(names)
		return names, nil
	}

	t := reflectx.Deref(reflect.TypeOf(arg))
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("unsupported parameter type %T", arg)
	}
	var names []string
	for _, fi := range dbMapper.TypeMap(t).Tree.Children {
		if fi == nil || fi.Embedded {
			continue
		}
		names = append(names, fi.Name)
	}
	return names, nil
}
