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

// TokenType 词法单元类型
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal
	TokenIdent
	TokenNumber
	TokenString
	TokenComma
	TokenSemicolon
	TokenDot
	TokenLParen
	TokenRParen
	TokenPlus
	TokenMinus
	TokenAsterisk
	TokenSlash
	TokenPercent
	TokenEQ
	TokenNE
	TokenGT
	TokenLT
	TokenGE
	TokenLE

	// 关键字
	TokenCREATE
	TokenSOURCE
	TokenSINK
	TokenSTREAM
	TokenPUMP
	TokenREADER
	TokenWRITER
	TokenFOR
	TokenTYPE
	TokenOPTIONS
	TokenINSERT
	TokenINTO
	TokenSELECT
	TokenFROM
	TokenWHERE
	TokenGROUP
	TokenBY
	TokenAS
	TokenAND
	TokenOR
	TokenNOT
	TokenIS
	TokenNULL
	TokenTRUE
	TokenFALSE
	TokenROWTIME
	TokenFIXED
	TokenSLIDING
	TokenWINDOW
)

var tokenNames = map[TokenType]string{
	TokenEOF:       "EOF",
	TokenIllegal:   "ILLEGAL",
	TokenIdent:     "identifier",
	TokenNumber:    "number",
	TokenString:    "string",
	TokenComma:     ",",
	TokenSemicolon: ";",
	TokenDot:       ".",
	TokenLParen:    "(",
	TokenRParen:    ")",
	TokenPlus:      "+",
	TokenMinus:     "-",
	TokenAsterisk:  "*",
	TokenSlash:     "/",
	TokenPercent:   "%",
	TokenEQ:        "=",
	TokenNE:        "<>",
	TokenGT:        ">",
	TokenLT:        "<",
	TokenGE:        ">=",
	TokenLE:        "<=",
}

var keywords = map[string]TokenType{
	"CREATE":  TokenCREATE,
	"SOURCE":  TokenSOURCE,
	"SINK":    TokenSINK,
	"STREAM":  TokenSTREAM,
	"PUMP":    TokenPUMP,
	"READER":  TokenREADER,
	"WRITER":  TokenWRITER,
	"FOR":     TokenFOR,
	"TYPE":    TokenTYPE,
	"OPTIONS": TokenOPTIONS,
	"INSERT":  TokenINSERT,
	"INTO":    TokenINTO,
	"SELECT":  TokenSELECT,
	"FROM":    TokenFROM,
	"WHERE":   TokenWHERE,
	"GROUP":   TokenGROUP,
	"BY":      TokenBY,
	"AS":      TokenAS,
	"AND":     TokenAND,
	"OR":      TokenOR,
	"NOT":     TokenNOT,
	"IS":      TokenIS,
	"NULL":    TokenNULL,
	"TRUE":    TokenTRUE,
	"FALSE":   TokenFALSE,
	"ROWTIME": TokenROWTIME,
	"FIXED":   TokenFIXED,
	"SLIDING": TokenSLIDING,
	"WINDOW":  TokenWINDOW,
}

// String 返回词法单元类型的显示名称
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	for kw, typ := range keywords {
		if typ == t {
			return kw
		}
	}
	return "UNKNOWN"
}

// Token 词法单元，[Pos, End) 为其在输入中的字节区间
type Token struct {
	Type  TokenType
	Value string
	Pos   int
	End   int
}

// Is 判断是否为指定类型
func (t Token) Is(typ TokenType) bool {
	return t.Type == typ
}

// IsKeyword 判断是否为关键字
func (t Token) IsKeyword() bool {
	return t.Type >= TokenCREATE
}

// lookupIdent 关键字不区分大小写，其余返回标识符
func lookupIdent(ident string) TokenType {
	if typ, ok := keywords[strings.ToUpper(ident)]; ok {
		return typ
	}
	return TokenIdent
}
