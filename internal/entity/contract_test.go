package entity

import "testing"

func TestContractCandidateClone(t *testing.T) {
	title := "Original"
	value := 100.0
	c := &ContractCandidate{Title: &title, Value: &value, Status: "Active"}

	clone := c.Clone()
	*clone.Title = "Changed"
	*clone.Value = 999

	if *c.Title != "Original" || *c.Value != 100 {
		t.Error("clone shares pointers with the original")
	}

	var nilCand *ContractCandidate
	if nilCand.Clone() != nil {
		t.Error("cloning nil should return nil")
	}
}

func TestConfidenceScoresClone(t *testing.T) {
	s := ConfidenceScores{"title": 0.5}
	clone := s.Clone()
	clone["title"] = 0.9
	clone["counterparty"] = 0.1

	if s["title"] != 0.5 || len(s) != 1 {
		t.Error("clone shares the underlying map")
	}
	if ConfidenceScores(nil).Clone() != nil {
		t.Error("cloning nil should return nil")
	}
}
