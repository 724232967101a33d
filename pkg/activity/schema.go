package activity

// itemActivitySchema is the Avro record schema for the metadata.items.activity topic,
// grounded on the field set the source's KafkaProducer.create_file_operation_logs builds
// by hand before calling fastavro's schemaless_writer.
const itemActivitySchema = `{
	"type": "record",
	"name": "ItemActivity",
	"namespace": "core.activity",
	"fields": [
		{"name": "activity_type", "type": "string"},
		{"name": "activity_time", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "item_id", "type": "string"},
		{"name": "item_type", "type": "string"},
		{"name": "item_name", "type": "string"},
		{"name": "item_parent_path", "type": "string"},
		{"name": "container_code", "type": "string"},
		{"name": "container_type", "type": "string"},
		{"name": "zone", "type": "int"},
		{"name": "user", "type": "string"},
		{"name": "imported_from", "type": "string"},
		{
			"name": "changes",
			"type": {
				"type": "array",
				"items": {
					"type": "record",
					"name": "ItemActivityChange",
					"fields": [
						{"name": "item_property", "type": "string"},
						{"name": "old_value", "type": "string"},
						{"name": "new_value", "type": "string"}
					]
				}
			}
		}
	]
}`
