package skyshow

import "github.com/gekko3d/skyshow/particlert/rt/core"

var (
	ErrInvalidConfiguration = core.ErrInvalidConfiguration
	ErrAssetDecode          = core.ErrAssetDecode
)

func invalidf(format string, args ...any) error {
	return core.Invalidf(format, args...)
}
