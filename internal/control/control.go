package control

import (
	"context"
	"sync"

	"github.com/dmrpanel/dmrctl/internal/api/models"
	"github.com/dmrpanel/dmrctl/internal/engine"
	"github.com/dmrpanel/dmrctl/internal/engine/commands"
)

// Controller runs engine commands. Every command gets its own goroutine and
// nothing is shared between them but the client and the log sink, so one
// failing or slow command never holds up another.
type Controller struct {
	client *engine.Client
	logger commands.Logger
}

func NewController(client *engine.Client, logger commands.Logger) *Controller {
	return &Controller{
		client: client,
		logger: logger,
	}
}

// PushCommand starts command in the background. The outcome is recorded in
// response, whose Wait group is released when the command finished.
func (c *Controller) PushCommand(command commands.Command, response *models.ApiResponse) {
	if response == nil {
		response = &models.ApiResponse{}
	}
	if response.Ctx == nil {
		response.Ctx = context.Background()
	}
	command.Response = response
	go c.operate(&command)
}

// Dispatch runs all commands concurrently and returns once every one of
// them finished. Responses are in the order of cmds.
func (c *Controller) Dispatch(ctx context.Context, cmds ...commands.Command) []*models.ApiResponse {
	wg := sync.WaitGroup{}
	responses := make([]*models.ApiResponse, len(cmds))

	for i, command := range cmds {
		responses[i] = &models.ApiResponse{Wait: &wg, Ctx: ctx}
		wg.Add(1)
		c.PushCommand(command, responses[i])
	}

	wg.Wait()
	return responses
}

func (c *Controller) operate(command *commands.Command) {
	if command.IsContextDone() {
		err := command.Response.Ctx.Err()
		c.logger.Error("command canceled", "command", command.Command, "error", err)
		command.Response.Done(err)
		return
	}

	err := command.Send(command.Response.Ctx, c.client, c.logger)
	if err != nil {
		c.logger.Error("command failed", "command", command.Command, "error", err)
	}
	command.Response.Done(err)
}

// Failed counts the responses that did not succeed.
func Failed(responses []*models.ApiResponse) int {
	n := 0
	for _, response := range responses {
		if !response.Result {
			n++
		}
	}
	return n
}
