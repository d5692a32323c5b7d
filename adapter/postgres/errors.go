package postgres

import (
	"errors"

	"github.com/arloliu/sqlexec/errmap"
	"github.com/arloliu/sqlexec/types"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// codes classifies SQLSTATE values. Classes without an exact entry are
// handled by classRule.
var codes = errmap.CodeTable{
	"40P01": {Kind: types.KindDeadlock, Transient: true},
	"40001": {Kind: types.KindConcurrency, Transient: true},
	"55P03": {Kind: types.KindTimeout, Transient: true},
	"57014": {Kind: types.KindTimeout, Transient: true},
	"25P03": {Kind: types.KindTimeout, Transient: true},

	"57P01": {Kind: types.KindConnection, Transient: true},
	"57P02": {Kind: types.KindConnection, Transient: true},
	"57P03": {Kind: types.KindConnection, Transient: true},
	"53300": {Kind: types.KindConnection, Transient: true},
	"3D000": {Kind: types.KindNotFound},

	"42601": {Kind: types.KindSyntax},
	"42P01": {Kind: types.KindNotFound},
	"42703": {Kind: types.KindNotFound},
	"42883": {Kind: types.KindNotFound},
	"34000": {Kind: types.KindNotFound},
	"42501": {Kind: types.KindPermission},
	"28000": {Kind: types.KindPermission},
	"28P01": {Kind: types.KindPermission},
}

// classRule classifies a SQLSTATE by its two-character class.
func classRule(code string) (errmap.Rule, bool) {
	if len(code) != 5 {
		return errmap.Rule{}, false
	}

	switch code[:2] {
	case "08":
		return errmap.Rule{Kind: types.KindConnection, Transient: true}, true
	case "22":
		return errmap.Rule{Kind: types.KindValidation}, true
	case "23":
		return errmap.Rule{Kind: types.KindConstraint}, true
	case "42":
		return errmap.Rule{Kind: types.KindSyntax}, true
	case "53":
		return errmap.Rule{Kind: types.KindConnection, Transient: true}, true
	default:
		return errmap.Rule{}, false
	}
}

// Refiner returns the refiner for pgx and lib/pq errors.
func Refiner() errmap.Refiner {
	return errmap.Chain(codes.Refiner(errorCode, classRule), errmap.ConnectionRefiner())
}

func errorCode(err error) (string, string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.Message, true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Message, true
	}

	return "", "", false
}
