package monitor

import (
	"context"

	"servermonitor/api"
	"servermonitor/internal/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.uber.org/zap"
)

// instanceDetails are the descriptive attributes taken from DescribeInstances
type instanceDetails struct {
	name         string
	publicIP     *string
	privateIP    *string
	instanceType *string
}

// Inventory lists every instance reported by DescribeInstanceStatus, joined
// with its descriptive attributes from DescribeInstances.
func (s *Service) Inventory(ctx context.Context) ([]api.InstanceRecord, error) {
	details, err := s.describeInstances(ctx)
	if err != nil {
		return nil, providerError("DescribeInstances", LabelInventory, "", err)
	}

	statuses, err := s.describeStatuses(ctx)
	if err != nil {
		return nil, providerError("DescribeInstanceStatus", LabelInventory, "", err)
	}

	records := make([]api.InstanceRecord, 0, len(statuses))
	for _, st := range statuses {
		if aws.ToString(st.InstanceId) == "" {
			logging.Logger().Warn("skipping status entry without instance id")
			continue
		}
		records = append(records, s.mergeRecord(st, details))
	}

	logging.Logger().Debug("inventory collected",
		zap.Int("described", len(details)),
		zap.Int("records", len(records)))

	return records, nil
}

func (s *Service) describeInstances(ctx context.Context) (map[string]instanceDetails, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	out, err := s.compute.DescribeInstances(callCtx, &ec2.DescribeInstancesInput{})
	if err != nil {
		return nil, err
	}

	details := make(map[string]instanceDetails)
	for _, reservation := range out.Reservations {
		for _, inst := range reservation.Instances {
			id := aws.ToString(inst.InstanceId)
			if id == "" {
				continue
			}
			d := instanceDetails{
				name:      NameTag(inst.Tags),
				publicIP:  inst.PublicIpAddress,
				privateIP: inst.PrivateIpAddress,
			}
			if inst.InstanceType != "" {
				d.instanceType = aws.String(string(inst.InstanceType))
			}
			details[id] = d
		}
	}
	return details, nil
}

func (s *Service) describeStatuses(ctx context.Context) ([]types.InstanceStatus, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	out, err := s.compute.DescribeInstanceStatus(callCtx, &ec2.DescribeInstanceStatusInput{
		IncludeAllInstances: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	return out.InstanceStatuses, nil
}

func (s *Service) mergeRecord(st types.InstanceStatus, details map[string]instanceDetails) api.InstanceRecord {
	id := aws.ToString(st.InstanceId)
	rec := api.InstanceRecord{
		InstanceID:     id,
		Name:           api.NotAvailable,
		InstanceState:  api.NotAvailable,
		SystemStatus:   api.NotAvailable,
		InstanceStatus: api.NotAvailable,
		LastUpdated:    s.now().UTC().Format(api.LastUpdatedLayout),
	}

	if d, ok := details[id]; ok {
		rec.Name = d.name
		rec.PublicIP = d.publicIP
		rec.PrivateIP = d.privateIP
		rec.InstanceType = d.instanceType
	}
	if st.InstanceState != nil && st.InstanceState.Name != "" {
		rec.InstanceState = string(st.InstanceState.Name)
	}
	if st.SystemStatus != nil && st.SystemStatus.Status != "" {
		rec.SystemStatus = string(st.SystemStatus.Status)
	}
	if st.InstanceStatus != nil && st.InstanceStatus.Status != "" {
		rec.InstanceStatus = string(st.InstanceStatus.Status)
	}
	return rec
}

// NameTag returns the value of the "Name" tag, or the no-name sentinel
func NameTag(tags []types.Tag) string {
	for _, tag := range tags {
		if aws.ToString(tag.Key) == "Name" {
			return aws.ToString(tag.Value)
		}
	}
	return api.NoNameTag
}
