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

import "strings"

// Lexer 将管道 DDL 切分为词法单元
type Lexer struct {
	input   string
	pos     int
	readPos int
	ch      byte
}

func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// NextToken 返回下一个词法单元，输入结束后一直返回 TokenEOF
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()
	tok := l.scan()
	tok.End = l.pos
	return tok
}

func (l *Lexer) scan() Token {

	pos := l.pos
	single := func(typ TokenType) Token {
		l.readChar()
		return Token{Type: typ, Value: l.input[pos:l.pos], Pos: pos}
	}
	double := func(typ TokenType) Token {
		l.readChar()
		l.readChar()
		return Token{Type: typ, Value: l.input[pos:l.pos], Pos: pos}
	}

	switch l.ch {
	case 0:
		return Token{Type: TokenEOF, Pos: pos}
	case ',':
		return single(TokenComma)
	case ';':
		return single(TokenSemicolon)
	case '.':
		return single(TokenDot)
	case '(':
		return single(TokenLParen)
	case ')':
		return single(TokenRParen)
	case '+':
		return single(TokenPlus)
	case '-':
		return single(TokenMinus)
	case '*':
		return single(TokenAsterisk)
	case '/':
		return single(TokenSlash)
	case '%':
		return single(TokenPercent)
	case '=':
		if l.peekChar() == '=' {
			return double(TokenEQ)
		}
		return single(TokenEQ)
	case '>':
		if l.peekChar() == '=' {
			return double(TokenGE)
		}
		return single(TokenGT)
	case '<':
		switch l.peekChar() {
		case '=':
			return double(TokenLE)
		case '>':
			return double(TokenNE)
		}
		return single(TokenLT)
	case '!':
		if l.peekChar() == '=' {
			return double(TokenNE)
		}
		return single(TokenIllegal)
	case '\'':
		value, ok := l.readString()
		if !ok {
			return Token{Type: TokenIllegal, Value: l.input[pos:], Pos: pos}
		}
		return Token{Type: TokenString, Value: value, Pos: pos}
	}

	if isLetter(l.ch) {
		ident := l.readIdentifier()
		return Token{Type: lookupIdent(ident), Value: ident, Pos: pos}
	}
	if isDigit(l.ch) {
		return Token{Type: TokenNumber, Value: l.readNumber(), Pos: pos}
	}
	return single(TokenIllegal)
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) readIdentifier() string {
	pos := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[pos:l.pos]
}

func (l *Lexer) readNumber() string {
	pos := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[pos:l.pos]
}

// readString 读取单引号字符串，'' 转义为单个引号
func (l *Lexer) readString() (string, bool) {
	var sb strings.Builder
	l.readChar() // 跳过开头单引号
	for {
		switch l.ch {
		case 0:
			return "", false
		case '\'':
			if l.peekChar() != '\'' {
				l.readChar() // 跳过结尾单引号
				return sb.String(), true
			}
			l.readChar()
		}
		sb.WriteByte(l.ch)
		l.readChar()
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch != '-' || l.peekChar() != '-' {
			return
		}
		for l.ch != '\n' && l.ch != 0 {
			l.readChar()
		}
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
