package invite

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/vocabadmin/internal/logging"
	"github.com/fyrsmithlabs/vocabadmin/internal/vocab"
)

// User-facing submission messages.
const (
	MsgInviteFailed = "Failed to send invite. Please try again."
	MsgInviteSent   = "Invitation Sent Successfully!"
)

var (
	// ErrInviteFailed wraps any backend failure of a submission.
	ErrInviteFailed = errors.New("invite failed")

	// ErrSubmitPending is returned while an earlier submission is in flight.
	ErrSubmitPending = errors.New("an invite is already being sent")
)

// Inviter sends an invitation to the backend.
type Inviter interface {
	InviteUser(ctx context.Context, req vocab.InviteRequest) error
}

// Controller submits invitations one at a time.
type Controller struct {
	inviter Inviter
	logger  *logging.Logger
	pending atomic.Bool
}

// NewController returns a Controller that sends through inviter.
func NewController(inviter Inviter, logger *logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Controller{inviter: inviter, logger: logger}
}

// Pending reports whether a submission is in flight.
func (c *Controller) Pending() bool {
	return c.pending.Load()
}

// Submit validates req and sends the trimmed request. A *ValidationError is
// returned without touching the network; a backend failure wraps
// ErrInviteFailed.
func (c *Controller) Submit(ctx context.Context, req vocab.InviteRequest) error {
	req = Normalize(req)
	if verr := Validate(req); verr != nil {
		return verr
	}

	if !c.pending.CompareAndSwap(false, true) {
		return ErrSubmitPending
	}
	defer c.pending.Store(false)

	if err := c.inviter.InviteUser(ctx, req); err != nil {
		c.logger.Warn(ctx, "invite failed", zap.String("role", req.Role), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrInviteFailed, err)
	}

	c.logger.Info(ctx, "invite sent", zap.String("role", req.Role))
	return nil
}

// Message returns the user-facing text for a Submit error.
func Message(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, ErrSubmitPending):
		return "An invite is already being sent. Please wait."
	default:
		return MsgInviteFailed
	}
}
