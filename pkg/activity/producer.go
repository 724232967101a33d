// Package activity publishes item-activity log entries to the metadata.items.activity
// Kafka topic, schema-validated with Avro. Grounded on the source's KafkaProducer
// (aiokafka + fastavro schemaless_writer against a fixed .avsc), adapted to
// segmentio/kafka-go's Writer and hamba/avro/v2's schemaless Marshal, which plays the same
// role as fastavro in this ecosystem.
package activity

import (
	"context"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/pkg/errors"
	kafka "github.com/segmentio/kafka-go"

	"github.com/PilotDataPlatform/pipelines-core/pkg/models"
)

// Topic is the fixed destination topic for item-activity events.
const Topic = "metadata.items.activity"

const (
	// ActivityCopy marks a node materialized by a copy job.
	ActivityCopy = "copy"
	// ActivityDelete marks a node archived by a delete job.
	ActivityDelete = "delete"
)

// change is one before/after field delta recorded on a copy activity.
type change struct {
	ItemProperty string `avro:"item_property"`
	OldValue     string `avro:"old_value"`
	NewValue     string `avro:"new_value"`
}

// itemActivity mirrors the Avro record exactly; field order and names must match schema.go.
type itemActivity struct {
	ActivityType   string   `avro:"activity_type"`
	ActivityTime   int64    `avro:"activity_time"`
	ItemID         string   `avro:"item_id"`
	ItemType       string   `avro:"item_type"`
	ItemName       string   `avro:"item_name"`
	ItemParentPath string   `avro:"item_parent_path"`
	ContainerCode  string   `avro:"container_code"`
	ContainerType  string   `avro:"container_type"`
	Zone           int32    `avro:"zone"`
	User           string   `avro:"user"`
	ImportedFrom   string   `avro:"imported_from"`
	Changes        []change `avro:"changes"`
}

// Producer is a singleton-style Kafka writer for item-activity events. Construction dials
// no broker eagerly; kafka-go's Writer connects lazily on first WriteMessages.
type Producer struct {
	writer *kafka.Writer
	schema avro.Schema
}

// New builds a Producer against the given brokers. Idempotent production is requested via
// RequiredAcks=all plus a bounded retry count, the closest kafka-go equivalent to
// aiokafka's enable_idempotence flag.
func New(brokers []string) (*Producer, error) {
	schema, err := avro.Parse(itemActivitySchema)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing item activity avro schema")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  5,
	}

	return &Producer{writer: w, schema: schema}, nil
}

// Close releases the writer's connections. cmd/pipelines does not call it: the producer
// that buildDeps creates stays open until the process exits.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// LogCopy records a copy activity: inputFile is the source node, outputFile the node it
// was copied to.
func (p *Producer) LogCopy(ctx context.Context, inputFile, outputFile models.Node, operator string) error {
	msg := itemActivity{
		ActivityType:   ActivityCopy,
		ActivityTime:   time.Now().UnixMilli(),
		ItemID:         inputFile.ID,
		ItemType:       string(inputFile.Type),
		ItemName:       inputFile.Name,
		ItemParentPath: inputFile.ParentPath,
		ContainerCode:  inputFile.ContainerCode,
		ContainerType:  inputFile.ContainerType,
		Zone:           int32(inputFile.Zone),
		User:           operator,
		ImportedFrom:   "",
		Changes: []change{
			{ItemProperty: "path", OldValue: inputFile.DisplayPath(), NewValue: outputFile.DisplayPath()},
			{ItemProperty: "id", OldValue: inputFile.ID, NewValue: outputFile.ID},
		},
	}
	return p.send(ctx, msg)
}

// LogDelete records a delete (archive) activity for a single file node.
func (p *Producer) LogDelete(ctx context.Context, archivedFile models.Node, operator string) error {
	msg := itemActivity{
		ActivityType:   ActivityDelete,
		ActivityTime:   time.Now().UnixMilli(),
		ItemID:         archivedFile.ID,
		ItemType:       string(archivedFile.Type),
		ItemName:       archivedFile.Name,
		ItemParentPath: archivedFile.RestorePath,
		ContainerCode:  archivedFile.ContainerCode,
		ContainerType:  archivedFile.ContainerType,
		Zone:           int32(archivedFile.Zone),
		User:           operator,
		ImportedFrom:   "",
		Changes:        []change{},
	}
	return p.send(ctx, msg)
}

func (p *Producer) send(ctx context.Context, msg itemActivity) error {
	data, err := avro.Marshal(p.schema, msg)
	if err != nil {
		return errors.Wrap(err, "error encoding item activity message")
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Value: data}); err != nil {
		return errors.Wrap(err, "error sending item activity message to kafka")
	}
	return nil
}
