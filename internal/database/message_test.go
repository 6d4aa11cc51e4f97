package repository

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func findStage(t *testing.T, pipeline []bson.D, name string) bson.D {
	t.Helper()
	for _, stage := range pipeline {
		if len(stage) == 1 && stage[0].Key == name {
			value, ok := stage[0].Value.(bson.D)
			if !ok {
				t.Fatalf("%s stage value is %T", name, stage[0].Value)
			}
			return value
		}
	}
	t.Fatalf("pipeline has no %s stage", name)
	return nil
}

func TestMessagesPipelineSortsByCreationAscending(t *testing.T) {
	pipeline := messagesPipeline(primitive.NewObjectID())

	sort := findStage(t, pipeline, "$sort")
	if len(sort) != 1 || sort[0].Key != "created_at" || sort[0].Value != 1 {
		t.Errorf("sort stage = %v, want created_at ascending", sort)
	}

	// ordering must be fixed before the lookup fans out sender data
	sortAt, lookupAt := -1, -1
	for i, stage := range pipeline {
		switch stage[0].Key {
		case "$sort":
			sortAt = i
		case "$lookup":
			lookupAt = i
		}
	}
	if sortAt > lookupAt {
		t.Errorf("sort stage at %d after lookup at %d", sortAt, lookupAt)
	}
}

func TestMessagesPipelineScopesAndStripsPassword(t *testing.T) {
	conversationID := primitive.NewObjectID()
	pipeline := messagesPipeline(conversationID)

	match := findStage(t, pipeline, "$match")
	if len(match) != 1 || match[0].Key != "conversation" || match[0].Value != conversationID {
		t.Errorf("match stage = %v", match)
	}

	project := findStage(t, pipeline, "$project")
	if len(project) != 1 || project[0].Key != "sender_info.password" || project[0].Value != 0 {
		t.Errorf("project stage = %v, want sender_info.password excluded", project)
	}
}
