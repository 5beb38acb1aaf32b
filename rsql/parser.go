/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package rsql

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rulego/pumpsql/aggregator"
	"github.com/rulego/pumpsql/pipeline"
)

// 单条表达式允许的最大词法单元数，防止异常输入导致死循环
const maxExprTokens = 1000

type Parser struct {
	input string
	lexer *Lexer
	cur   Token
	peek  Token
}

func NewParser(input string) *Parser {
	p := &Parser{input: input, lexer: NewLexer(input)}
	p.next()
	p.next()
	return p
}

// Parse 解析以分号分隔的语句序列
func Parse(sql string) ([]Statement, error) {
	return NewParser(sql).Parse()
}

func (p *Parser) Parse() ([]Statement, error) {
	var stmts []Statement
	for {
		for p.cur.Is(TokenSemicolon) {
			p.next()
		}
		if p.cur.Is(TokenEOF) {
			return stmts, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if !p.cur.Is(TokenSemicolon) && !p.cur.Is(TokenEOF) {
			return nil, p.errorf("unexpected token after statement", ";")
		}
	}
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) errorf(message string, expected ...string) *ParseError {
	if p.cur.Is(TokenIllegal) {
		message = "illegal character"
	}
	return newParseError(p.input, p.cur, message, expected...)
}

func (p *Parser) expect(typ TokenType) (Token, error) {
	tok := p.cur
	if !tok.Is(typ) {
		return tok, p.errorf("unexpected token", typ.String())
	}
	p.next()
	return tok, nil
}

// expectName 读取对象或列名称，关键字在名称位置上视为普通标识符
func (p *Parser) expectName() (string, error) {
	if !p.cur.Is(TokenIdent) && !p.cur.IsKeyword() {
		return "", p.errorf("unexpected token", "identifier")
	}
	name := p.cur.Value
	p.next()
	return name, nil
}

func (p *Parser) parseStatement() (Statement, error) {
	if _, err := p.expect(TokenCREATE); err != nil {
		return nil, err
	}
	switch {
	case p.cur.Is(TokenSTREAM):
		return p.parseCreateStream()
	case p.cur.Is(TokenSOURCE) && p.peek.Is(TokenSTREAM), p.cur.Is(TokenSINK) && p.peek.Is(TokenSTREAM):
		p.next()
		return p.parseCreateStream()
	case p.cur.Is(TokenSOURCE) && p.peek.Is(TokenREADER):
		p.next()
		p.next()
		return p.parseCreateSourceReader()
	case p.cur.Is(TokenSINK) && p.peek.Is(TokenWRITER):
		p.next()
		p.next()
		return p.parseCreateSinkWriter()
	case p.cur.Is(TokenPUMP):
		return p.parseCreatePump()
	}
	return nil, p.errorf("unexpected token after CREATE", "STREAM", "SOURCE STREAM", "SINK STREAM", "PUMP", "SOURCE READER", "SINK WRITER")
}

// parseCreateStream 解析 STREAM name (col TYPE [NOT NULL] [ROWTIME], ...)
func (p *Parser) parseCreateStream() (Statement, error) {
	p.next() // 跳过STREAM
	name, err := p.expectName()
	if err != nil {
		return nil, err
	}
	stmt := &CreateStream{Stream: pipeline.StreamModel{Name: name}}
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	for {
		col, rowtime, err := p.parseColumnDefinition()
		if err != nil {
			return nil, err
		}
		if rowtime {
			if stmt.Stream.RowtimeColumn != "" {
				return nil, p.errorf("stream "+name+" declares more than one ROWTIME column")
			}
			stmt.Stream.RowtimeColumn = col.Name
		}
		stmt.Stream.Columns = append(stmt.Stream.Columns, col)
		if p.cur.Is(TokenRParen) {
			p.next()
			return stmt, nil
		}
		if _, err := p.expect(TokenComma); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseColumnDefinition() (pipeline.ColumnDefinition, bool, error) {
	name, err := p.expectName()
	if err != nil {
		return pipeline.ColumnDefinition{}, false, err
	}
	typeTok := p.cur
	typ, ok := lookupSQLType(typeTok.Value)
	if !ok || !(typeTok.Is(TokenIdent) || typeTok.IsKeyword()) {
		return pipeline.ColumnDefinition{}, false, p.errorf("unknown column type",
			"INTEGER", "FLOAT", "TEXT", "BOOLEAN", "TIMESTAMP")
	}
	p.next()
	col := pipeline.ColumnDefinition{Name: name, Type: typ, Nullable: true}
	rowtime := false
	for {
		switch {
		case p.cur.Is(TokenNOT):
			p.next()
			if _, err := p.expect(TokenNULL); err != nil {
				return col, false, err
			}
			col.Nullable = false
		case p.cur.Is(TokenROWTIME):
			p.next()
			rowtime = true
		default:
			return col, rowtime, nil
		}
	}
}

func lookupSQLType(name string) (pipeline.SQLType, bool) {
	switch strings.ToUpper(name) {
	case "INTEGER", "INT", "BIGINT", "SMALLINT":
		return pipeline.SQLTypeInteger, true
	case "FLOAT", "REAL", "DOUBLE":
		return pipeline.SQLTypeFloat, true
	case "TEXT", "VARCHAR", "STRING":
		return pipeline.SQLTypeText, true
	case "BOOLEAN", "BOOL":
		return pipeline.SQLTypeBoolean, true
	case "TIMESTAMP":
		return pipeline.SQLTypeTimestamp, true
	}
	return 0, false
}

// parseForeignHeader 解析 name FOR stream TYPE t [OPTIONS (KEY 'value', ...)]
func (p *Parser) parseForeignHeader() (name, stream, typ string, opts pipeline.Options, err error) {
	if name, err = p.expectName(); err != nil {
		return
	}
	if _, err = p.expect(TokenFOR); err != nil {
		return
	}
	if stream, err = p.expectName(); err != nil {
		return
	}
	if _, err = p.expect(TokenTYPE); err != nil {
		return
	}
	if typ, err = p.expectName(); err != nil {
		return
	}
	opts = pipeline.Options{}
	if !p.cur.Is(TokenOPTIONS) {
		return
	}
	p.next()
	if _, err = p.expect(TokenLParen); err != nil {
		return
	}
	for !p.cur.Is(TokenRParen) {
		var key string
		if key, err = p.expectName(); err != nil {
			return
		}
		var value Token
		switch {
		case p.cur.Is(TokenString), p.cur.Is(TokenNumber):
			value = p.cur
			p.next()
		default:
			err = p.errorf("unexpected option value", "string")
			return
		}
		opts[strings.ToUpper(key)] = value.Value
		if p.cur.Is(TokenComma) {
			p.next()
		} else if !p.cur.Is(TokenRParen) {
			err = p.errorf("unexpected token in OPTIONS", ",", ")")
			return
		}
	}
	p.next()
	return
}

func (p *Parser) parseCreateSourceReader() (Statement, error) {
	name, stream, typ, opts, err := p.parseForeignHeader()
	if err != nil {
		return nil, err
	}
	readerType, err := pipeline.ParseSourceReaderType(typ)
	if err != nil {
		return nil, err
	}
	return &CreateSourceReader{Reader: pipeline.SourceReaderModel{
		Name: name, Type: readerType, DestStream: stream, Options: opts,
	}}, nil
}

func (p *Parser) parseCreateSinkWriter() (Statement, error) {
	name, stream, typ, opts, err := p.parseForeignHeader()
	if err != nil {
		return nil, err
	}
	writerType, err := pipeline.ParseSinkWriterType(typ)
	if err != nil {
		return nil, err
	}
	return &CreateSinkWriter{Writer: pipeline.SinkWriterModel{
		Name: name, Type: writerType, FromStream: stream, Options: opts,
	}}, nil
}

// parseCreatePump 解析
// PUMP name AS INSERT INTO dest [(cols)] SELECT [STREAM] items FROM streams
// [WHERE cond] [GROUP BY key] [FIXED | SLIDING WINDOW durations]
func (p *Parser) parseCreatePump() (Statement, error) {
	p.next() // 跳过PUMP
	name, err := p.expectName()
	if err != nil {
		return nil, err
	}
	stmt := &CreatePump{PumpName: name}
	for _, typ := range []TokenType{TokenAS, TokenINSERT, TokenINTO} {
		if _, err := p.expect(typ); err != nil {
			return nil, err
		}
	}
	if stmt.Dest, err = p.expectName(); err != nil {
		return nil, err
	}
	if p.cur.Is(TokenLParen) {
		p.next()
		for {
			col, err := p.expectName()
			if err != nil {
				return nil, err
			}
			stmt.InsertColumns = append(stmt.InsertColumns, col)
			if p.cur.Is(TokenRParen) {
				p.next()
				break
			}
			if _, err := p.expect(TokenComma); err != nil {
				return nil, err
			}
		}
	}

	// 解析SELECT子句
	if _, err := p.expect(TokenSELECT); err != nil {
		return nil, err
	}
	if p.cur.Is(TokenSTREAM) {
		p.next()
	}
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		stmt.Select = append(stmt.Select, item)
		if !p.cur.Is(TokenComma) {
			break
		}
		p.next()
	}

	// 解析FROM子句
	if _, err := p.expect(TokenFROM); err != nil {
		return nil, err
	}
	for {
		from, err := p.expectName()
		if err != nil {
			return nil, err
		}
		stmt.From = append(stmt.From, from)
		if !p.cur.Is(TokenComma) {
			break
		}
		p.next()
	}

	// 解析WHERE子句
	if p.cur.Is(TokenWHERE) {
		p.next()
		if stmt.Where, err = p.parseExpr(TokenGROUP, TokenFIXED, TokenSLIDING); err != nil {
			return nil, err
		}
	}

	// 解析GROUP BY子句
	if p.cur.Is(TokenGROUP) {
		p.next()
		if _, err := p.expect(TokenBY); err != nil {
			return nil, err
		}
		if stmt.GroupBy, err = p.parseExpr(TokenFIXED, TokenSLIDING); err != nil {
			return nil, err
		}
	}

	// 解析窗口子句
	if p.cur.Is(TokenFIXED) || p.cur.Is(TokenSLIDING) {
		if stmt.Window, err = p.parseWindow(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseSelectItem() (SelectItem, error) {
	var item SelectItem
	if p.cur.Is(TokenIdent) && p.peek.Is(TokenLParen) {
		if _, err := aggregator.ParseAggregateType(p.cur.Value); err == nil {
			item.Aggregate = strings.ToUpper(p.cur.Value)
			p.next()
			p.next()
			if p.cur.Is(TokenAsterisk) && p.peek.Is(TokenRParen) {
				p.next()
				item.Expr = &Expr{SQL: "*", Lang: "1"}
			} else {
				expr, err := p.parseExpr()
				if err != nil {
					return item, err
				}
				item.Expr = expr
			}
			if _, err := p.expect(TokenRParen); err != nil {
				return item, err
			}
		}
	}
	if item.Expr == nil {
		expr, err := p.parseExpr(TokenAS, TokenFROM)
		if err != nil {
			return item, err
		}
		item.Expr = expr
	}
	if p.cur.Is(TokenAS) {
		p.next()
		alias, err := p.expectName()
		if err != nil {
			return item, err
		}
		item.Alias = alias
	}
	return item, nil
}

// parseWindow 解析 FIXED WINDOW length, delay 或 SLIDING WINDOW length, period, delay
func (p *Parser) parseWindow() (*pipeline.WindowParameter, error) {
	sliding := p.cur.Is(TokenSLIDING)
	p.next()
	if _, err := p.expect(TokenWINDOW); err != nil {
		return nil, err
	}
	n := 2
	if sliding {
		n = 3
	}
	durations := make([]time.Duration, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			if _, err := p.expect(TokenComma); err != nil {
				return nil, err
			}
		}
		d, err := p.parseDuration()
		if err != nil {
			return nil, err
		}
		durations = append(durations, d)
	}
	var param pipeline.WindowParameter
	if sliding {
		param = pipeline.NewSlidingWindow(durations[0], durations[1], durations[2])
	} else {
		param = pipeline.NewFixedWindow(durations[0], durations[1])
	}
	return &param, nil
}

// parseDuration 支持 DURATION_SECS(10) 形式与 '10s' 字符串形式
func (p *Parser) parseDuration() (time.Duration, error) {
	if p.cur.Is(TokenString) {
		d, err := time.ParseDuration(p.cur.Value)
		if err != nil {
			return 0, p.errorf("invalid duration", "DURATION_SECS(n)", "'10s'")
		}
		p.next()
		return d, nil
	}
	unit, ok := durationUnits[strings.ToUpper(p.cur.Value)]
	if !p.cur.Is(TokenIdent) || !ok {
		return 0, p.errorf("unexpected token", "DURATION_MILLIS", "DURATION_SECS", "DURATION_MINS")
	}
	p.next()
	if _, err := p.expect(TokenLParen); err != nil {
		return 0, err
	}
	if !p.cur.Is(TokenNumber) {
		return 0, p.errorf("unexpected token", "number")
	}
	n, err := strconv.ParseInt(p.cur.Value, 10, 64)
	if err != nil {
		return 0, p.errorf("invalid duration", "integer")
	}
	p.next()
	if _, err := p.expect(TokenRParen); err != nil {
		return 0, err
	}
	return time.Duration(n) * unit, nil
}

// parseExpr 读取表达式直到括号层级为 0 的终止符。逗号、右括号、分号与
// 输入结束总是终止表达式
func (p *Parser) parseExpr(stops ...TokenType) (*Expr, error) {
	var toks []Token
	depth := 0
	for {
		if len(toks) > maxExprTokens {
			return nil, p.errorf("expression exceeds maximum length")
		}
		tok := p.cur
		if tok.Is(TokenEOF) || tok.Is(TokenSemicolon) || tok.Is(TokenIllegal) {
			break
		}
		if depth == 0 {
			if tok.Is(TokenComma) || tok.Is(TokenRParen) || slices.Contains(stops, tok.Type) {
				break
			}
		}
		switch tok.Type {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
		}
		toks = append(toks, tok)
		p.next()
	}
	if depth != 0 {
		return nil, p.errorf("unbalanced parentheses", ")")
	}
	if len(toks) == 0 {
		return nil, p.errorf("expression expected")
	}
	lang, err := p.translate(toks)
	if err != nil {
		return nil, err
	}
	expr := &Expr{
		SQL:  p.input[toks[0].Pos:toks[len(toks)-1].End],
		Lang: lang,
	}
	expr.Ident = columnIdent(toks)
	return expr, nil
}

// translate 将 SQL 表达式转换为表达式引擎语法
func (p *Parser) translate(toks []Token) (string, error) {
	var sb strings.Builder
	write := func(s string, spaced bool) {
		if spaced && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s)
	}
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		prev := Token{Type: TokenEOF}
		if i > 0 {
			prev = toks[i-1]
		}
		glued := prev.Is(TokenDot) || prev.Is(TokenLParen)
		switch tok.Type {
		case TokenString:
			write(strconv.Quote(tok.Value), !glued)
		case TokenEQ:
			write("==", true)
		case TokenNE:
			write("!=", true)
		case TokenAND:
			write("&&", true)
		case TokenOR:
			write("||", true)
		case TokenNOT:
			write("not", !glued)
		case TokenNULL:
			write("nil", !glued)
		case TokenTRUE:
			write("true", !glued)
		case TokenFALSE:
			write("false", !glued)
		case TokenIS:
			op := "=="
			if i+1 < len(toks) && toks[i+1].Is(TokenNOT) {
				op = "!="
				i++
			}
			if i+1 >= len(toks) || !toks[i+1].Is(TokenNULL) {
				return "", newParseError(p.input, tok, "IS must be followed by [NOT] NULL", "NULL")
			}
			i++
			write(op+" nil", true)
		case TokenDot, TokenComma, TokenRParen:
			write(tok.Value, false)
		case TokenLParen:
			write(tok.Value, !(prev.Is(TokenIdent) || prev.IsKeyword()) && !glued)
		case TokenIdent:
			name := tok.Value
			if i+1 < len(toks) && toks[i+1].Is(TokenLParen) {
				name = strings.ToLower(name)
			}
			write(name, !glued)
		default:
			// 其余关键字在表达式中视为列名
			write(tok.Value, !glued)
		}
	}
	return sb.String(), nil
}

// columnIdent 表达式为 col 或 stream.col 时返回 col
func columnIdent(toks []Token) string {
	isName := func(t Token) bool { return t.Is(TokenIdent) || (t.IsKeyword() && !isOperatorKeyword(t.Type)) }
	switch {
	case len(toks) == 1 && isName(toks[0]):
		return toks[0].Value
	case len(toks) == 3 && isName(toks[0]) && toks[1].Is(TokenDot) && isName(toks[2]):
		return toks[2].Value
	}
	return ""
}

func isOperatorKeyword(t TokenType) bool {
	switch t {
	case TokenAND, TokenOR, TokenNOT, TokenIS, TokenNULL, TokenTRUE, TokenFALSE:
		return true
	}
	return false
}
