//go:build !sqlite
// +build !sqlite

package dismiss

import (
	"errors"

	logx "github.com/GreatAuk/webupdate/pkg/logx"
)

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	_ = cfg
	_ = log
	return nil, errors.New("sqlite store not built: build with -tags sqlite")
}
