package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/zilaportal/portal/internal/domain/enums"
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func typesToText(types []enums.UserType) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out
}

func textToTypes(values []string) []enums.UserType {
	out := make([]enums.UserType, 0, len(values))
	for _, v := range values {
		out = append(out, enums.UserType(v))
	}
	return out
}

func rolesToText(roles []enums.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

func textToRoles(values []string) []enums.Role {
	out := make([]enums.Role, 0, len(values))
	for _, v := range values {
		out = append(out, enums.Role(v))
	}
	return out
}

func statusesToText(statuses []enums.ContentStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
