package mutate

import (
        "errors"
        "testing"

        "devtour/internal/model"
)

func TestCreateTour(t *testing.T) {
        var c model.Collection
        tour, err := CreateTour(&c, "  Onboarding ")
        if err != nil {
                t.Fatalf("CreateTour: %v", err)
        }
        if tour.Name != "Onboarding" || tour.ID == "" {
                t.Fatalf("unexpected tour %#v", tour)
        }
        if c.ActiveTourID != tour.ID || len(c.Tours) != 1 {
                t.Fatalf("expected new tour active, got %#v", c)
        }
        if tour.Steps == nil {
                t.Fatalf("expected empty, non-nil steps")
        }
}

func TestCreateTour_BlankNameRejected(t *testing.T) {
        c := model.Collection{Tours: []model.Tour{{ID: "t1", Name: "A"}}, ActiveTourID: "t1"}
        if _, err := CreateTour(&c, " \t "); !errors.Is(err, ErrEmptyName) {
                t.Fatalf("expected ErrEmptyName, got %v", err)
        }
        if len(c.Tours) != 1 || c.ActiveTourID != "t1" {
                t.Fatalf("collection changed on rejected create: %#v", c)
        }
}

func TestSetActiveTour(t *testing.T) {
        c := model.Collection{Tours: []model.Tour{{ID: "t1"}, {ID: "t2"}}, ActiveTourID: "t1"}
        if SetActiveTour(&c, "t1") {
                t.Fatalf("already active should be a no-op")
        }
        if SetActiveTour(&c, "missing") || c.ActiveTourID != "t1" {
                t.Fatalf("unknown tour should be a no-op")
        }
        if !SetActiveTour(&c, "t2") || c.ActiveTourID != "t2" {
                t.Fatalf("expected t2 active")
        }
}

func TestActiveTourAndRepair(t *testing.T) {
        c := model.Collection{Tours: []model.Tour{{ID: "t1"}, {ID: "t2"}}, ActiveTourID: "stale"}
        got, ok := ActiveTour(&c)
        if !ok || got.ID != "t1" {
                t.Fatalf("expected fallback to first tour")
        }
        if c.ActiveTourID != "stale" {
                t.Fatalf("ActiveTour must not modify the collection")
        }
        if !RepairActiveTour(&c) || c.ActiveTourID != "t1" {
                t.Fatalf("expected repair to t1, got %q", c.ActiveTourID)
        }
        if RepairActiveTour(&c) {
                t.Fatalf("second repair should be a no-op")
        }

        var empty model.Collection
        if _, ok := ActiveTour(&empty); ok {
                t.Fatalf("expected no active tour for empty collection")
        }
}

func TestRenameTour(t *testing.T) {
        c := model.Collection{Tours: []model.Tour{{ID: "t1", Name: "Old"}}}
        if _, err := RenameTour(&c, "t1", ""); !errors.Is(err, ErrEmptyName) {
                t.Fatalf("expected ErrEmptyName, got %v", err)
        }
        if _, err := RenameTour(&c, "nope", "X"); !errors.Is(err, ErrTourNotFound) {
                t.Fatalf("expected ErrTourNotFound, got %v", err)
        }
        if _, err := RenameTour(&c, "t1", " New "); err != nil || c.Tours[0].Name != "New" {
                t.Fatalf("rename failed: %v %#v", err, c.Tours[0])
        }
}

func TestDeleteTour_ReassignsActive(t *testing.T) {
        c := model.Collection{Tours: []model.Tour{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}}, ActiveTourID: "t1"}
        if _, err := DeleteTour(&c, "t1"); err != nil {
                t.Fatalf("DeleteTour: %v", err)
        }
        if len(c.Tours) != 2 || c.ActiveTourID != "t2" {
                t.Fatalf("unexpected collection after delete: %#v", c)
        }
        if _, err := DeleteTour(&c, "t1"); !errors.Is(err, ErrTourNotFound) {
                t.Fatalf("expected ErrTourNotFound, got %v", err)
        }
        _, _ = DeleteTour(&c, "t2")
        _, _ = DeleteTour(&c, "t3")
        if c.ActiveTourID != "" {
                t.Fatalf("expected no active tour once empty, got %q", c.ActiveTourID)
        }
}

func TestImportTour(t *testing.T) {
        var c model.Collection
        tour, err := ImportTour(&c, "Scanned", []AddStepInput{
                {File: "b.go", Line: 9, Description: "second"},
                {File: "a.go", Line: 1, Description: "first"},
        })
        if err != nil {
                t.Fatalf("ImportTour: %v", err)
        }
        if len(tour.Steps) != 2 || tour.Steps[0].Description != "second" || tour.Steps[1].Order != 2 {
                t.Fatalf("steps should keep input order: %#v", tour.Steps)
        }
        if c.ActiveTourID != tour.ID {
                t.Fatalf("imported tour should be active")
        }
        if _, err := ImportTour(&c, "", nil); !errors.Is(err, ErrEmptyName) {
                t.Fatalf("expected ErrEmptyName, got %v", err)
        }
}
