package monitor

import (
	"context"
	"fmt"

	"servermonitor/api"
	"servermonitor/internal/logging"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"go.uber.org/zap"
)

// Action is a lifecycle command accepted by Control
type Action string

const (
	ActionStart Action = "start"
	ActionStop  Action = "stop"
)

// ParseAction validates a raw action token
func ParseAction(raw string) (Action, error) {
	switch Action(raw) {
	case ActionStart, ActionStop:
		return Action(raw), nil
	default:
		return "", &ValidationError{
			Field:   "action",
			Value:   raw,
			Message: "Invalid action. Use 'start' or 'stop'.",
		}
	}
}

// Control requests a start or stop of one instance. The provider only
// acknowledges the request; the transition itself is not awaited.
func (s *Service) Control(ctx context.Context, instanceID, rawAction string) (*api.ControlResult, error) {
	action, err := ParseAction(rawAction)
	if err != nil {
		logging.Logger().Warn("rejected control action",
			zap.String("instance_id", instanceID),
			zap.String("action", rawAction))
		return nil, err
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	var op string
	ids := []string{instanceID}
	switch action {
	case ActionStart:
		op = "StartInstances"
		_, err = s.compute.StartInstances(callCtx, &ec2.StartInstancesInput{InstanceIds: ids})
	case ActionStop:
		op = "StopInstances"
		_, err = s.compute.StopInstances(callCtx, &ec2.StopInstancesInput{InstanceIds: ids})
	}
	if err != nil {
		return nil, providerError(op, LabelControl, instanceID, err)
	}

	logging.Logger().Info("control request accepted",
		zap.String("instance_id", instanceID),
		zap.String("action", string(action)))

	return &api.ControlResult{
		Success: true,
		Message: fmt.Sprintf("EC2 Instance %s %s request sent.", instanceID, action),
		Action:  string(action),
	}, nil
}
