package qdrant

import (
	"time"

	pb "github.com/qdrant/go-client/qdrant"

	domprofile "github.com/kailas-cloud/profilematch/internal/domain/profile"
)

const (
	keyName        = "name"
	keyDescription = "description"
	keyAge         = "age"
	keyLocation    = "location"
	keyCreatedAt   = "created_at"
)

func buildPayload(p *domprofile.Profile) map[string]*pb.Value {
	payload := map[string]*pb.Value{
		keyName:        stringValue(p.Name()),
		keyDescription: stringValue(p.Description()),
		keyCreatedAt:   stringValue(p.CreatedAt().UTC().Format(time.RFC3339Nano)),
	}
	if age := p.Age(); age != nil {
		payload[keyAge] = &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(*age)}}
	}
	if loc := p.Location(); loc != nil {
		payload[keyLocation] = stringValue(*loc)
	}
	return payload
}

func parsePayload(id string, payload map[string]*pb.Value) domprofile.Profile {
	var age *int
	if v, ok := payload[keyAge]; ok {
		if iv, ok := v.GetKind().(*pb.Value_IntegerValue); ok {
			n := int(iv.IntegerValue)
			age = &n
		}
	}

	var location *string
	if v, ok := payload[keyLocation]; ok {
		s := v.GetStringValue()
		location = &s
	}

	var createdAt time.Time
	if v, ok := payload[keyCreatedAt]; ok {
		if ts, err := time.Parse(time.RFC3339Nano, v.GetStringValue()); err == nil {
			createdAt = ts.UTC()
		}
	}

	return domprofile.Reconstruct(
		id, payload[keyName].GetStringValue(), payload[keyDescription].GetStringValue(),
		age, location, createdAt,
	)
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}
