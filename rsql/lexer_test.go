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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexer(t *testing.T) {
	input := "CREATE stream s (a INT) -- trailing comment\n; x.y <> 'it''s' >= 1.5 != <= %"
	expected := []struct {
		typ   TokenType
		value string
	}{
		{TokenCREATE, "CREATE"},
		{TokenSTREAM, "stream"},
		{TokenIdent, "s"},
		{TokenLParen, "("},
		{TokenIdent, "a"},
		{TokenIdent, "INT"},
		{TokenRParen, ")"},
		{TokenSemicolon, ";"},
		{TokenIdent, "x"},
		{TokenDot, "."},
		{TokenIdent, "y"},
		{TokenNE, "<>"},
		{TokenString, "it's"},
		{TokenGE, ">="},
		{TokenNumber, "1.5"},
		{TokenNE, "!="},
		{TokenLE, "<="},
		{TokenPercent, "%"},
		{TokenEOF, ""},
		{TokenEOF, ""},
	}
	l := NewLexer(input)
	for i, want := range expected {
		tok := l.NextToken()
		assert.Equal(t, want.typ, tok.Type, "token %d: %q", i, tok.Value)
		assert.Equal(t, want.value, tok.Value, "token %d", i)
	}
}

func TestLexerPositions(t *testing.T) {
	l := NewLexer("ab  'c'")
	tok := l.NextToken()
	assert.Equal(t, 0, tok.Pos)
	assert.Equal(t, 2, tok.End)
	tok = l.NextToken()
	assert.Equal(t, 4, tok.Pos)
	assert.Equal(t, 7, tok.End)
}

func TestLexerIllegal(t *testing.T) {
	tok := NewLexer("'open").NextToken()
	assert.Equal(t, TokenIllegal, tok.Type)

	tok = NewLexer("#").NextToken()
	assert.Equal(t, TokenIllegal, tok.Type)
	assert.Equal(t, "#", tok.Value)
}

func TestTokenTypeString(t *testing.T) {
	assert.Equal(t, "SELECT", TokenSELECT.String())
	assert.Equal(t, ",", TokenComma.String())
	assert.Equal(t, "identifier", TokenIdent.String())
	assert.True(t, Token{Type: TokenWINDOW}.IsKeyword())
	assert.False(t, Token{Type: TokenIdent}.IsKeyword())
}
