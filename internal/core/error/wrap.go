package errx

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// WrapRedis maps Redis errors to the unified Error type with appropriate status codes.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return New(err, KindNotFound, http.StatusNotFound, RedisNotFoundMessage)
	}
	return New(err, KindCollaborator, http.StatusBadGateway, RedisErrorMessage)
}

// WrapDB maps database/sql errors the same way.
func WrapDB(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return New(err, KindNotFound, http.StatusNotFound, DBNotFoundMessage)
	}
	return New(err, KindCollaborator, http.StatusBadGateway, DBErrorMessage)
}
