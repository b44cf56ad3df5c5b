package store

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/taintgraph/engine/internal/model"
)

// SQLiteStore reads the indexed program representation out of a
// sqlite database produced by an upstream indexer. It never writes.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens dsn (a file path or "file:...?mode=ro" URI) against
// the pure-Go sqlite driver in read-only mode.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	if !strings.Contains(dsn, "mode=ro") {
		if strings.Contains(dsn, "?") {
			dsn += "&mode=ro"
		} else {
			dsn += "?mode=ro"
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening index store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to index store: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// normPath applies forward-slash normalization at the store boundary,
// per the cache-load and comparison-boundary invariant.
func normPath(p string) string {
	return path.Clean(strings.ReplaceAll(p, `\`, "/"))
}

func (s *SQLiteStore) HasRelation(ctx context.Context, name string) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM sqlite_master WHERE type='table' AND name=?`, name)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *SQLiteStore) Symbols(ctx context.Context) ([]model.Symbol, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file, name, type, line, column FROM symbols`)
	if err != nil {
		return nil, fmt.Errorf("reading symbols: %w", err)
	}
	defer rows.Close()

	var out []model.Symbol
	for rows.Next() {
		var sym model.Symbol
		var typ string
		if err := rows.Scan(&sym.File, &sym.Name, &typ, &sym.Line, &sym.Column); err != nil {
			return nil, err
		}
		sym.File = normPath(sym.File)
		sym.Type = model.SymbolType(typ)
		out = append(out, sym)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Assignments(ctx context.Context) ([]model.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file, line, target_var, source_expr, in_function FROM assignments`)
	if err != nil {
		return nil, fmt.Errorf("reading assignments: %w", err)
	}
	defer rows.Close()

	var out []model.Assignment
	byKey := map[string]int{}
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(&a.File, &a.Line, &a.TargetVar, &a.SourceExpr, &a.InFunction); err != nil {
			return nil, err
		}
		a.File = normPath(a.File)
		out = append(out, a)
		byKey[assignmentKey(a.File, a.Line, a.TargetVar)] = len(out) - 1
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// source_vars is reconstructed from the junction relation, never
	// by parsing source_expr. byKey holds indexes into out rather than
	// pointers, since out keeps growing below: a pointer taken before
	// a later append reallocates the backing array would go stale.
	srcRows, err := s.db.QueryContext(ctx,
		`SELECT file, line, target_var, var_name FROM assignment_sources ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("reading assignment_sources: %w", err)
	}
	defer srcRows.Close()

	for srcRows.Next() {
		var file, targetVar, varName string
		var line int
		if err := srcRows.Scan(&file, &line, &targetVar, &varName); err != nil {
			return nil, err
		}
		file = normPath(file)
		if i, ok := byKey[assignmentKey(file, line, targetVar)]; ok {
			out[i].SourceVars = append(out[i].SourceVars, varName)
		}
	}
	return out, srcRows.Err()
}

func assignmentKey(file string, line int, targetVar string) string {
	return fmt.Sprintf("%s:%d:%s", file, line, targetVar)
}

func (s *SQLiteStore) FunctionCallArgs(ctx context.Context) ([]model.FunctionCallArg, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file, line, caller_function, callee_function, param_name, argument_expr FROM function_call_args`)
	if err != nil {
		return nil, fmt.Errorf("reading function_call_args: %w", err)
	}
	defer rows.Close()

	var out []model.FunctionCallArg
	for rows.Next() {
		var a model.FunctionCallArg
		if err := rows.Scan(&a.File, &a.Line, &a.CallerFunction, &a.CalleeFunction, &a.ParamName, &a.ArgumentExpr); err != nil {
			return nil, err
		}
		a.File = normPath(a.File)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) FunctionReturns(ctx context.Context) ([]model.FunctionReturn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file, line, function_name, return_expr FROM function_returns`)
	if err != nil {
		return nil, fmt.Errorf("reading function_returns: %w", err)
	}
	defer rows.Close()

	var out []model.FunctionReturn
	byKey := map[string]int{}
	for rows.Next() {
		var r model.FunctionReturn
		if err := rows.Scan(&r.File, &r.Line, &r.FunctionName, &r.ReturnExpr); err != nil {
			return nil, err
		}
		r.File = normPath(r.File)
		out = append(out, r)
		byKey[assignmentKey(r.File, r.Line, r.FunctionName)] = len(out) - 1
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// byKey holds indexes, not pointers — see the comment in Assignments.
	varRows, err := s.db.QueryContext(ctx,
		`SELECT file, line, function_name, var_name FROM function_return_sources ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("reading function_return_sources: %w", err)
	}
	defer varRows.Close()

	for varRows.Next() {
		var file, fn, varName string
		var line int
		if err := varRows.Scan(&file, &line, &fn, &varName); err != nil {
			return nil, err
		}
		file = normPath(file)
		if i, ok := byKey[assignmentKey(file, line, fn)]; ok {
			out[i].ReturnVars = append(out[i].ReturnVars, varName)
		}
	}
	return out, varRows.Err()
}

func (s *SQLiteStore) CFGBlocks(ctx context.Context) ([]model.CFGBlock, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file, function_name, block_type, start_line, end_line, condition_expr FROM cfg_blocks`)
	if err != nil {
		return nil, fmt.Errorf("reading cfg_blocks: %w", err)
	}
	defer rows.Close()

	var out []model.CFGBlock
	for rows.Next() {
		var b model.CFGBlock
		var bt string
		if err := rows.Scan(&b.ID, &b.File, &b.FunctionName, &bt, &b.StartLine, &b.EndLine, &b.ConditionExpr); err != nil {
			return nil, err
		}
		b.File = normPath(b.File)
		b.BlockType = model.BlockType(bt)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CFGEdges(ctx context.Context) ([]model.CFGEdge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file, function_name, source_block_id, target_block_id, edge_type FROM cfg_edges`)
	if err != nil {
		return nil, fmt.Errorf("reading cfg_edges: %w", err)
	}
	defer rows.Close()

	var out []model.CFGEdge
	for rows.Next() {
		var e model.CFGEdge
		var et string
		if err := rows.Scan(&e.ID, &e.File, &e.FunctionName, &e.SourceBlockID, &e.TargetBlockID, &et); err != nil {
			return nil, err
		}
		e.File = normPath(e.File)
		e.EdgeType = model.EdgeType(et)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CFGBlockStatements(ctx context.Context) ([]model.CFGBlockStatement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT block_id, statement_type, line, statement_text, statement_order FROM cfg_block_statements ORDER BY statement_order`)
	if err != nil {
		return nil, fmt.Errorf("reading cfg_block_statements: %w", err)
	}
	defer rows.Close()

	var out []model.CFGBlockStatement
	for rows.Next() {
		var st model.CFGBlockStatement
		var typ string
		if err := rows.Scan(&st.BlockID, &typ, &st.Line, &st.StatementText, &st.StatementOrder); err != nil {
			return nil, err
		}
		st.StatementType = model.StatementType(typ)
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SQLQueries(ctx context.Context) ([]SQLQuery, error) {
	ok, err := s.HasRelation(ctx, "sql_queries")
	if err != nil || !ok {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT file, line, query_text, in_function FROM sql_queries`)
	if err != nil {
		return nil, fmt.Errorf("reading sql_queries: %w", err)
	}
	defer rows.Close()

	var out []SQLQuery
	for rows.Next() {
		var q SQLQuery
		if err := rows.Scan(&q.File, &q.Line, &q.Text, &q.InFunc); err != nil {
			return nil, err
		}
		q.File = normPath(q.File)
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ORMQueries(ctx context.Context) ([]ORMQuery, error) {
	ok, err := s.HasRelation(ctx, "orm_queries")
	if err != nil || !ok {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT file, line, method, in_function FROM orm_queries`)
	if err != nil {
		return nil, fmt.Errorf("reading orm_queries: %w", err)
	}
	defer rows.Close()

	var out []ORMQuery
	for rows.Next() {
		var q ORMQuery
		if err := rows.Scan(&q.File, &q.Line, &q.Method, &q.InFunc); err != nil {
			return nil, err
		}
		q.File = normPath(q.File)
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ReactHooks(ctx context.Context) ([]ReactHook, error) {
	ok, err := s.HasRelation(ctx, "react_hooks")
	if err != nil || !ok {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT file, line, hook_name, arg_expr, in_function FROM react_hooks`)
	if err != nil {
		return nil, fmt.Errorf("reading react_hooks: %w", err)
	}
	defer rows.Close()

	var out []ReactHook
	for rows.Next() {
		var h ReactHook
		if err := rows.Scan(&h.File, &h.Line, &h.HookName, &h.Arg, &h.InFunc); err != nil {
			return nil, err
		}
		h.File = normPath(h.File)
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) VariableUsage(ctx context.Context) ([]VariableUsage, error) {
	ok, err := s.HasRelation(ctx, "variable_usage")
	if err != nil || !ok {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT file, line, var_name, in_function FROM variable_usage`)
	if err != nil {
		return nil, fmt.Errorf("reading variable_usage: %w", err)
	}
	defer rows.Close()

	var out []VariableUsage
	for rows.Next() {
		var u VariableUsage
		if err := rows.Scan(&u.File, &u.Line, &u.VarName, &u.InFunction); err != nil {
			return nil, err
		}
		u.File = normPath(u.File)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) APIEndpoints(ctx context.Context) ([]APIEndpoint, error) {
	ok, err := s.HasRelation(ctx, "api_endpoints")
	if err != nil || !ok {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT file, line, method, route FROM api_endpoints`)
	if err != nil {
		return nil, fmt.Errorf("reading api_endpoints: %w", err)
	}
	defer rows.Close()

	var out []APIEndpoint
	for rows.Next() {
		var e APIEndpoint
		if err := rows.Scan(&e.File, &e.Line, &e.Method, &e.Route); err != nil {
			return nil, err
		}
		e.File = normPath(e.File)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) JWTPatterns(ctx context.Context) ([]JWTPattern, error) {
	ok, err := s.HasRelation(ctx, "jwt_patterns")
	if err != nil || !ok {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT file, line, kind FROM jwt_patterns`)
	if err != nil {
		return nil, fmt.Errorf("reading jwt_patterns: %w", err)
	}
	defer rows.Close()

	var out []JWTPattern
	for rows.Next() {
		var p JWTPattern
		if err := rows.Scan(&p.File, &p.Line, &p.Kind); err != nil {
			return nil, err
		}
		p.File = normPath(p.File)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ObjectLiterals(ctx context.Context) ([]ObjectLiteral, error) {
	ok, err := s.HasRelation(ctx, "object_literals")
	if err != nil || !ok {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT file, line, object_var, property, function_ref FROM object_literals`)
	if err != nil {
		return nil, fmt.Errorf("reading object_literals: %w", err)
	}
	defer rows.Close()

	var out []ObjectLiteral
	for rows.Next() {
		var o ObjectLiteral
		if err := rows.Scan(&o.File, &o.Line, &o.ObjectVar, &o.Property, &o.FunctionRef); err != nil {
			return nil, err
		}
		o.File = normPath(o.File)
		out = append(out, o)
	}
	return out, rows.Err()
}
