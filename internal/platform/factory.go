package platform

import (
	"github.com/aretw0/redline/pkg/core"
	"github.com/aretw0/redline/pkg/opc"
	"github.com/aretw0/redline/pkg/revision"
)

// New wires the review service: the OPC packager reads packages and the revision
// acceptor resolves tracked changes.
//
//	svc := platform.New(platform.WithRemoveComments(true))
func New(opts ...Option) *core.Service {
	return newService(buildOptions(opts))
}

func newService(o *options) *core.Service {
	packager := o.packager
	if packager == nil {
		packager = opc.NewPackager()
	}

	reviewer := o.reviewer
	if reviewer == nil {
		reviewer = revision.NewAcceptor(
			revision.WithRemoveComments(o.removeComments),
			revision.WithLogger(o.logger),
		)
	}

	return core.NewService(packager, reviewer, core.Config{
		Logger:         o.logger,
		RemoveComments: o.removeComments,
	})
}
