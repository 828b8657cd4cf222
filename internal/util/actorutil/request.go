package actorutil

import (
	"github.com/berfenger/eta2mqtt/internal/core/domain"

	"github.com/asynkron/protoactor-go/actor"
)

type forRequest struct {
	req domain.ActorRequest
}

type ExtendedRequest interface {
	Respond(ctx actor.Context, resp domain.ActorResponse)
	ReplyTo(ctx actor.Context) *actor.PID
}

func ForRequest(r domain.ActorRequest) ExtendedRequest {
	return forRequest{req: r}
}

func (r forRequest) Respond(ctx actor.Context, resp domain.ActorResponse) {
	if r.req.ReplyTo() != nil {
		ctx.Send((*actor.PID)(r.req.ReplyTo()), resp)
	} else if ctx.Sender() != nil {
		ctx.Respond(resp)
	}
}

func (r forRequest) ReplyTo(ctx actor.Context) *actor.PID {
	if r.req.ReplyTo() != nil {
		return (*actor.PID)(r.req.ReplyTo())
	}
	return ctx.Sender()
}

// RequestError answers req with an error response of the matching type.
// Unknown request types get nothing back.
func RequestError(ctx actor.Context, req any, err error) {
	mixIn := domain.ActorResponseMixIn{ResponseError: err}
	switch r := req.(type) {
	case domain.GetDevicesInfoRequest:
		ForRequest(r).Respond(ctx, domain.GetDevicesInfoResponse{ActorResponseMixIn: mixIn})
	case domain.GetSensorValuesRequest:
		ForRequest(r).Respond(ctx, domain.GetSensorValuesResponse{ActorResponseMixIn: mixIn})
	case domain.GetSensorSnapshotRequest:
		ForRequest(r).Respond(ctx, domain.GetSensorSnapshotResponse{ActorResponseMixIn: mixIn})
	case domain.PublishMessageRequest:
		ForRequest(r).Respond(ctx, domain.PublishMessageResponse{ActorResponseMixIn: mixIn})
	case domain.PublishSensorUpdateRequest:
		ForRequest(r).Respond(ctx, domain.PublishSensorUpdateResponse{ActorResponseMixIn: mixIn})
	case domain.PublishDiscoveryRequest:
		ForRequest(r).Respond(ctx, domain.PublishDiscoveryResponse{ActorResponseMixIn: mixIn})
	}
}
