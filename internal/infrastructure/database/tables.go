package database

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

// TableAPI is the part of the DynamoDB client needed to provision tables.
type TableAPI interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// TableNames mirrors the env vars read by the repositories.
type TableNames struct {
	Appointments string
	Slots        string
	Finances     string
}

func TableNamesFromEnv() TableNames {
	return TableNames{
		Appointments: getenvDefault("APPOINTMENTS_TABLE", "appointments"),
		Slots:        getenvDefault("APPOINTMENT_SLOTS_TABLE", "appointment_slots"),
		Finances:     getenvDefault("FINANCES_TABLE", "finances"),
	}
}

// TableDefinitions returns the on-demand table layout used by the persistence adapters:
// appointments (GSI date-index), the per-slot version table, and finances (GSI appointment_id-index).
func TableDefinitions(names TableNames) []*dynamodb.CreateTableInput {
	return []*dynamodb.CreateTableInput{
		{
			TableName:   aws.String(names.Appointments),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
				{AttributeName: aws.String("date"), AttributeType: types.ScalarAttributeTypeS},
				{AttributeName: aws.String("time"), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
			},
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				{
					IndexName: aws.String("date-index"),
					KeySchema: []types.KeySchemaElement{
						{AttributeName: aws.String("date"), KeyType: types.KeyTypeHash},
						{AttributeName: aws.String("time"), KeyType: types.KeyTypeRange},
					},
					Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
				},
			},
		},
		{
			TableName:   aws.String(names.Slots),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("slot_key"), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("slot_key"), KeyType: types.KeyTypeHash},
			},
		},
		{
			TableName:   aws.String(names.Finances),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
				{AttributeName: aws.String("appointment_id"), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
			},
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				{
					IndexName: aws.String("appointment_id-index"),
					KeySchema: []types.KeySchemaElement{
						{AttributeName: aws.String("appointment_id"), KeyType: types.KeyTypeHash},
					},
					Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
				},
			},
		},
	}
}

// CreateTables provisions every table, skipping the ones that already exist.
func CreateTables(ctx context.Context, api TableAPI, names TableNames) error {
	for _, def := range TableDefinitions(names) {
		name := aws.ToString(def.TableName)
		_, err := api.CreateTable(ctx, def)
		var inUse *types.ResourceInUseException
		switch {
		case err == nil:
			log.Info().Str("table", name).Msg("[database][dynamodb] table created")
		case errors.As(err, &inUse):
			log.Info().Str("table", name).Msg("[database][dynamodb] table already exists")
		default:
			log.Error().Err(err).Str("table", name).Msg("[database][dynamodb] create table failed")
			return err
		}
	}
	return nil
}
