package oracle

import (
	"errors"
	"strconv"

	"github.com/arloliu/sqlexec/errmap"
	"github.com/arloliu/sqlexec/types"
	"github.com/sijms/go-ora/v2/network"
)

// codes classifies ORA- error numbers.
var codes = errmap.CodeTable{
	"60":   {Kind: types.KindDeadlock, Transient: true},
	"54":   {Kind: types.KindConcurrency, Transient: true},
	"8177": {Kind: types.KindConcurrency, Transient: true},
	"4068": {Kind: types.KindConcurrency, Transient: true},

	"51":    {Kind: types.KindTimeout, Transient: true},
	"1013":  {Kind: types.KindTimeout},
	"30006": {Kind: types.KindTimeout, Transient: true},

	"1033":  {Kind: types.KindConnection, Transient: true},
	"1034":  {Kind: types.KindConnection, Transient: true},
	"1089":  {Kind: types.KindConnection, Transient: true},
	"3113":  {Kind: types.KindConnection, Transient: true},
	"3114":  {Kind: types.KindConnection, Transient: true},
	"3135":  {Kind: types.KindConnection, Transient: true},
	"12170": {Kind: types.KindConnection, Transient: true},
	"12514": {Kind: types.KindConnection, Transient: true},
	"12528": {Kind: types.KindConnection, Transient: true},
	"12537": {Kind: types.KindConnection, Transient: true},
	"12541": {Kind: types.KindConnection, Transient: true},
	"12543": {Kind: types.KindConnection, Transient: true},
	"12545": {Kind: types.KindConnection, Transient: true},

	"1":    {Kind: types.KindConstraint},
	"1400": {Kind: types.KindConstraint},
	"2290": {Kind: types.KindConstraint},
	"2291": {Kind: types.KindConstraint},
	"2292": {Kind: types.KindConstraint},

	"900":  {Kind: types.KindSyntax},
	"933":  {Kind: types.KindSyntax},
	"936":  {Kind: types.KindSyntax},
	"6550": {Kind: types.KindSyntax},

	"904":  {Kind: types.KindNotFound},
	"942":  {Kind: types.KindNotFound},
	"1403": {Kind: types.KindNotFound},
	"4043": {Kind: types.KindNotFound},

	"1017":  {Kind: types.KindPermission},
	"1031":  {Kind: types.KindPermission},
	"28000": {Kind: types.KindPermission},

	"1438":  {Kind: types.KindValidation},
	"1722":  {Kind: types.KindValidation},
	"1830":  {Kind: types.KindValidation},
	"1840":  {Kind: types.KindValidation},
	"1861":  {Kind: types.KindValidation},
	"6502":  {Kind: types.KindValidation},
	"12899": {Kind: types.KindValidation},
}

// Refiner returns the refiner for go-ora errors. Codes are reported without
// the ORA- prefix and leading zeros.
func Refiner() errmap.Refiner {
	return errmap.Chain(codes.Refiner(errorCode, nil), errmap.ConnectionRefiner())
}

func errorCode(err error) (string, string, bool) {
	var oraErr *network.OracleError
	if errors.As(err, &oraErr) {
		return strconv.Itoa(oraErr.ErrCode), oraErr.ErrMsg, true
	}

	return "", "", false
}
