// Package storage persists appointments in DynamoDB. The table is keyed by
// appointment id with two secondary indexes: one for listing a user's
// bookings, one for slot collision lookups.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/autocarehq/autocare/internal/model"
)

const (
	ownerIndex = "UserEmailIndex"
	slotIndex  = "DateTimeIndex"
)

var ErrSlotTaken = errors.New("time slot is already booked")

type AppointmentRepository struct {
	api   *dynamodb.Client
	table string
}

func NewAppointmentRepository(api *dynamodb.Client, table string) *AppointmentRepository {
	return &AppointmentRepository{api: api, table: table}
}

// EnsureTable creates the appointments table if absent and waits for it to
// become active. Repeated calls are no-ops.
func EnsureTable(ctx context.Context, api *dynamodb.Client, table string) error {
	_, err := api.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(table),
	})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("describe table %q: %w", table, err)
	}

	_, err = api.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(table),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("appointment_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("userEmail"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("date"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("time"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("appointment_id"), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(ownerIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("userEmail"), KeyType: types.KeyTypeHash},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
			{
				IndexName: aws.String(slotIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("date"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("time"), KeyType: types.KeyTypeRange},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeKeysOnly},
			},
		},
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return fmt.Errorf("create table %q: %w", table, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(api)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)}, 2*time.Minute); err != nil {
		return fmt.Errorf("wait for table %q: %w", table, err)
	}
	return nil
}

// Create persists the appointment together with a slot-lock item in a single
// transaction. Both writes are conditioned on non-existence, so two bookings
// for the same date+time cannot both commit regardless of what the read-side
// validation saw. A lost race surfaces as ErrSlotTaken.
func (r *AppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	item, err := attributevalue.MarshalMap(appt)
	if err != nil {
		return fmt.Errorf("marshal appointment: %w", err)
	}

	_, err = r.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(r.table),
					Item:                item,
					ConditionExpression: aws.String("attribute_not_exists(appointment_id)"),
				},
			},
			{
				Put: &types.Put{
					TableName: aws.String(r.table),
					Item: map[string]types.AttributeValue{
						"appointment_id": &types.AttributeValueMemberS{Value: slotLockKey(appt.Date, appt.Time)},
						"date":           &types.AttributeValueMemberS{Value: appt.Date},
						"time":           &types.AttributeValueMemberS{Value: appt.Time},
						"holder":         &types.AttributeValueMemberS{Value: appt.ID},
					},
					ConditionExpression: aws.String("attribute_not_exists(appointment_id)"),
				},
			},
		},
	})
	if err != nil {
		if isConditionalCancel(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("put appointment %s: %w", appt.ID, err)
	}
	return nil
}

// ListByOwner returns all appointments booked under the given email.
func (r *AppointmentRepository) ListByOwner(ctx context.Context, email string) ([]model.Appointment, error) {
	out, err := r.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		IndexName:              aws.String(ownerIndex),
		KeyConditionExpression: aws.String("userEmail = :email"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query appointments for %s: %w", email, err)
	}

	appts := make([]model.Appointment, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &appts); err != nil {
		return nil, fmt.Errorf("unmarshal appointments: %w", err)
	}
	return appts, nil
}

// SlotTaken reports whether any record occupies date+slot. This is the
// validator's early check; Create's conditional transaction is the guarantee.
func (r *AppointmentRepository) SlotTaken(ctx context.Context, date, slot string) (bool, error) {
	out, err := r.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		IndexName:              aws.String(slotIndex),
		KeyConditionExpression: aws.String("#d = :date AND #t = :time"),
		ExpressionAttributeNames: map[string]string{
			"#d": "date",
			"#t": "time",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":date": &types.AttributeValueMemberS{Value: date},
			":time": &types.AttributeValueMemberS{Value: slot},
		},
		Select: types.SelectCount,
	})
	if err != nil {
		return false, fmt.Errorf("query slot %s %s: %w", date, slot, err)
	}
	return out.Count > 0, nil
}

// ReadyCheck reports whether the table is reachable.
func (r *AppointmentRepository) ReadyCheck() func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := r.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(r.table),
		})
		return err
	}
}

func slotLockKey(date, slot string) string {
	return "SLOT#" + date + "#" + slot
}

func isConditionalCancel(err error) bool {
	var cancelled *types.TransactionCanceledException
	if !errors.As(err, &cancelled) {
		return false
	}
	for _, reason := range cancelled.CancellationReasons {
		if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}
