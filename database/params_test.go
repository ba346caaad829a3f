package database

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/wallet-backend/wallet-backend/utils"
)

func TestExpandRepeatedParametersRewritesLaterOccurrences(t *testing.T) {
	statement := "SELECT * FROM account WHERE owner = :name OR manager = :name OR auditor = :name"
	params := utils.JSON{"name": "alice"}

	out, outParams := ExpandRepeatedParameters(statement, params)

	assert.Equal(t, "SELECT * FROM account WHERE owner = :name OR manager = :name_1 OR auditor = :name_2", out)
	assert.Equal(t, utils.JSON{
		"name":   "alice",
		"name_1": "alice",
		"name_2": "alice",
	}, outParams)
}

func TestExpandRepeatedParametersSingleOccurrenceUnchanged(t *testing.T) {
	statement := "SELECT * FROM account WHERE owner = :name"
	out, outParams := ExpandRepeatedParameters(statement, utils.JSON{"name": "alice"})

	assert.Equal(t, statement, out)
	assert.Equal(t, utils.JSON{"name": "alice"}, outParams)
}

func TestExpandRepeatedParametersRespectsIdentifierBoundaries(t *testing.T) {
	// :wh must never match inside :wh_sq_1_1.
	statement := "SELECT * FROM t WHERE a = :wh AND b = :wh_sq_1_1 AND c = :wh"
	params := utils.JSON{"wh": 1, "wh_sq_1_1": 2}

	out, outParams := ExpandRepeatedParameters(statement, params)

	assert.Equal(t, "SELECT * FROM t WHERE a = :wh AND b = :wh_sq_1_1 AND c = :wh_1", out)
	assert.Equal(t, 1, outParams["wh"])
	assert.Equal(t, 1, outParams["wh_1"])
	assert.Equal(t, 2, outParams["wh_sq_1_1"])
}

func TestExpandRepeatedParametersAtEndOfStatement(t *testing.T) {
	out, outParams := ExpandRepeatedParameters("SELECT :v, :v", utils.JSON{"v": "x"})

	assert.Equal(t, "SELECT :v, :v_1", out)
	assert.Equal(t, "x", outParams["v_1"])
}

func TestExpandRepeatedParametersNoParams(t *testing.T) {
	out, outParams := ExpandRepeatedParameters("SELECT 1", nil)
	assert.Equal(t, "SELECT 1", out)
	assert.Nil(t, outParams)
}

func TestSubstituteLiterals(t *testing.T) {
	statement := "UPDATE wallet SET balance = :balance WHERE wallet_id = :id"
	params := utils.JSON{
		"balance": decimal.RequireFromString("10.50"),
		"id":      "w1",
	}

	rendered := SubstituteLiterals(statement, params)
	assert.Equal(t, "UPDATE wallet SET balance = 10.5 WHERE wallet_id = 'w1'", rendered)
}

func TestSubstituteLiteralsEscapesQuotes(t *testing.T) {
	rendered := SubstituteLiterals("SELECT :v", utils.JSON{"v": "o'hara"})
	assert.Equal(t, "SELECT 'o''hara'", rendered)
}

func TestSubstituteLiteralsNil(t *testing.T) {
	rendered := SubstituteLiterals("SELECT :v", utils.JSON{"v": nil})
	assert.Equal(t, "SELECT NULL", rendered)
}
