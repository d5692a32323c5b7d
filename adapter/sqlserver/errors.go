package sqlserver

import (
	"errors"
	"strconv"

	"github.com/arloliu/sqlexec/errmap"
	"github.com/arloliu/sqlexec/types"
	mssql "github.com/denisenkom/go-mssqldb"
)

// codes classifies SQL Server error numbers.
var codes = errmap.CodeTable{
	// Deadlocks, lock and snapshot conflicts.
	"1205": {Kind: types.KindDeadlock, Transient: true},
	"1222": {Kind: types.KindTimeout, Transient: true},
	"3960": {Kind: types.KindConcurrency, Transient: true},
	"3961": {Kind: types.KindConcurrency, Transient: true},

	// Timeouts.
	"-2": {Kind: types.KindTimeout, Transient: true},

	// Connectivity and Azure SQL throttling.
	"53":    {Kind: types.KindConnection, Transient: true},
	"233":   {Kind: types.KindConnection, Transient: true},
	"4060":  {Kind: types.KindConnection},
	"10053": {Kind: types.KindConnection, Transient: true},
	"10054": {Kind: types.KindConnection, Transient: true},
	"10060": {Kind: types.KindConnection, Transient: true},
	"10928": {Kind: types.KindConnection, Transient: true},
	"10929": {Kind: types.KindConnection, Transient: true},
	"40197": {Kind: types.KindConnection, Transient: true},
	"40501": {Kind: types.KindConnection, Transient: true},
	"40613": {Kind: types.KindConnection, Transient: true},
	"49918": {Kind: types.KindConnection, Transient: true},
	"49919": {Kind: types.KindConnection, Transient: true},
	"49920": {Kind: types.KindConnection, Transient: true},

	// Constraint violations.
	"515":  {Kind: types.KindConstraint},
	"547":  {Kind: types.KindConstraint},
	"2601": {Kind: types.KindConstraint},
	"2627": {Kind: types.KindConstraint},

	// Bad input.
	"245":  {Kind: types.KindValidation},
	"8114": {Kind: types.KindValidation},
	"8152": {Kind: types.KindValidation},
	"2628": {Kind: types.KindValidation},
	"201":  {Kind: types.KindValidation},
	"8144": {Kind: types.KindValidation},

	// Syntax and missing objects.
	"102":  {Kind: types.KindSyntax},
	"156":  {Kind: types.KindSyntax},
	"207":  {Kind: types.KindNotFound},
	"208":  {Kind: types.KindNotFound},
	"2812": {Kind: types.KindNotFound},

	// Permissions.
	"229":   {Kind: types.KindPermission},
	"230":   {Kind: types.KindPermission},
	"262":   {Kind: types.KindPermission},
	"18456": {Kind: types.KindPermission},
}

// Refiner returns the refiner for go-mssqldb errors.
func Refiner() errmap.Refiner {
	return errmap.Chain(codes.Refiner(errorCode, nil), errmap.ConnectionRefiner())
}

func errorCode(err error) (string, string, bool) {
	var se mssql.Error
	if errors.As(err, &se) {
		return strconv.Itoa(int(se.Number)), se.Message, true
	}

	var sp *mssql.Error
	if errors.As(err, &sp) && sp != nil {
		return strconv.Itoa(int(sp.Number)), sp.Message, true
	}

	return "", "", false
}
