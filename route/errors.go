package route

import "errors"

var (
	// ErrInvalidTable wraps every validation failure reported by [Table.Validate].
	ErrInvalidTable = errors.New("invalid route table")
	// ErrUnknownRole is returned when configuration names an undeclared role.
	ErrUnknownRole = errors.New("unknown role")
	// ErrUnknownRoute is returned by lookups for a name the table does not declare.
	ErrUnknownRoute = errors.New("unknown route")
	// ErrAliasLoop is returned when redirect aliases form a cycle.
	ErrAliasLoop = errors.New("route alias loop")
)
