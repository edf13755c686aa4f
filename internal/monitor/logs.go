package monitor

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"unicode/utf8"

	"servermonitor/api"
	"servermonitor/internal/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"go.uber.org/zap"
)

var errInvalidUTF8 = errors.New("console output is not valid UTF-8")

// ConsoleLog fetches the latest console output snapshot of an instance.
// A missing snapshot yields api.NoConsoleLog rather than an error.
func (s *Service) ConsoleLog(ctx context.Context, instanceID string) (string, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	out, err := s.compute.GetConsoleOutput(callCtx, &ec2.GetConsoleOutputInput{
		InstanceId: aws.String(instanceID),
		Latest:     aws.Bool(true),
	})
	if err != nil {
		return "", providerError("GetConsoleOutput", LabelLogs, instanceID, err)
	}

	encoded := aws.ToString(out.Output)
	if encoded == "" {
		logging.Logger().Debug("no console output available", zap.String("instance_id", instanceID))
		return api.NoConsoleLog, nil
	}

	text, err := DecodeConsoleOutput(encoded)
	if err != nil {
		return "", providerError("GetConsoleOutput", LabelLogs, instanceID, err)
	}
	return text, nil
}

// DecodeConsoleOutput turns the base64 console payload into text
func DecodeConsoleOutput(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode console output: %w", err)
	}
	if !utf8.Valid(raw) {
		return "", errInvalidUTF8
	}
	return string(raw), nil
}
