package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/clinsa/psicotest-backend/internal/config"
	"github.com/clinsa/psicotest-backend/internal/database"
	"github.com/clinsa/psicotest-backend/internal/logger"
	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/repository"
)

// Seeds a published screening questionnaire with normative bands so a fresh
// install has something to assign. Requires at least one psychologist row
// (run create-psychologist first).
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	templateRepo := repository.NewTemplateRepository(pool)
	interpRepo := repository.NewInterpretationRepository(pool)

	fmt.Println("=== Seeding Screening Catalog ===")

	var authorID int
	err = pool.QueryRow(ctx, "SELECT id FROM psychologists ORDER BY id LIMIT 1").Scan(&authorID)
	if err != nil {
		if err == pgx.ErrNoRows {
			log.Fatal().Msg("No psychologist found. Run cmd/create-psychologist first")
		}
		log.Fatal().Err(err).Msg("Failed to look up author")
	}
	fmt.Printf("Using psychologist ID %d as template author\n", authorID)

	tmpl := &model.AssessmentTemplate{
		Title:          "Cuestionario de Tamizaje Emocional",
		Description:    "Tamizaje breve de ansiedad y estado de ánimo para primera consulta.",
		AuthorID:       authorID,
		TotalValue:     100,
		WeightingMode:  model.WeightingModeEqual,
		NegativeMarker: "no",
		Status:         model.TemplateStatusDraft,
	}
	if err := templateRepo.Create(ctx, tmpl); err != nil {
		log.Fatal().Err(err).Msg("Failed to create template")
	}
	fmt.Printf("Created template %s\n", tmpl.ID)

	anxiety := "ansiedad"
	mood := "estado_animo"
	yesNo := []model.OptionTemplate{
		{Label: "Sí", Value: "si", OrderNum: 1},
		{Label: "No", Value: "no", OrderNum: 2},
	}

	questions := []model.QuestionTemplate{
		{
			TemplateID: tmpl.ID,
			Text:       "¿Se ha sentido nervioso, ansioso o al límite durante las últimas dos semanas?",
			Type:       model.QuestionTypeSingleChoice,
			OrderNum:   1,
			Mandatory:  true,
			Domain:     &anxiety,
			Options:    yesNo,
		},
		{
			TemplateID: tmpl.ID,
			Text:       "¿Ha tenido dificultad para dejar de preocuparse?",
			Type:       model.QuestionTypeSingleChoice,
			OrderNum:   2,
			Mandatory:  true,
			Domain:     &anxiety,
			Options:    yesNo,
		},
		{
			TemplateID: tmpl.ID,
			Text:       "¿Ha sentido poco interés o placer en hacer cosas?",
			Type:       model.QuestionTypeSingleChoice,
			OrderNum:   3,
			Mandatory:  true,
			Domain:     &mood,
			Options:    yesNo,
		},
		{
			TemplateID: tmpl.ID,
			Text:       "¿Se ha sentido decaído, deprimido o sin esperanza?",
			Type:       model.QuestionTypeSingleChoice,
			OrderNum:   4,
			Mandatory:  true,
			Domain:     &mood,
			Options:    yesNo,
		},
		{
			TemplateID: tmpl.ID,
			Text:       "¿Cuáles de las siguientes situaciones le generan malestar?",
			Type:       model.QuestionTypeMultiChoice,
			OrderNum:   5,
			Mandatory:  false,
			Options: []model.OptionTemplate{
				{Label: "Trabajo o estudios", Value: "trabajo", OrderNum: 1},
				{Label: "Familia", Value: "familia", OrderNum: 2},
				{Label: "Salud", Value: "salud", OrderNum: 3},
				{Label: "Otra", Value: "otra", IsOther: true, OrderNum: 4},
			},
		},
		{
			TemplateID: tmpl.ID,
			Text:       "En una escala de 0 a 10, ¿cómo calificaría su estado de ánimo hoy?",
			Type:       model.QuestionTypeNumericRange,
			OrderNum:   6,
			Mandatory:  true,
			MinValue:   floatPtr(0),
			MaxValue:   floatPtr(10),
			StepValue:  floatPtr(1),
		},
		{
			TemplateID:  tmpl.ID,
			Text:        "¿Hay algo más que quiera comentarle a su psicólogo?",
			Type:        model.QuestionTypeFreeText,
			OrderNum:    7,
			Mandatory:   false,
			Placeholder: strPtr("Escriba aquí cualquier comentario adicional..."),
		},
	}

	if err := templateRepo.ReplaceQuestions(ctx, tmpl.ID, questions); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed questions")
	}
	fmt.Printf("Seeded %d questions\n", len(questions))

	bands := map[string][]model.BandRange{
		anxiety: {
			{TemplateID: tmpl.ID, Domain: anxiety, Min: 0, Max: 0, Label: "Sin indicadores", Position: 1},
			{TemplateID: tmpl.ID, Domain: anxiety, Min: 1, Max: 1, Label: "Leve", Position: 2},
			{TemplateID: tmpl.ID, Domain: anxiety, Min: 2, Max: 2, Label: "Requiere valoración", Position: 3},
		},
		mood: {
			{TemplateID: tmpl.ID, Domain: mood, Min: 0, Max: 0, Label: "Sin indicadores", Position: 1},
			{TemplateID: tmpl.ID, Domain: mood, Min: 1, Max: 1, Label: "Leve", Position: 2},
			{TemplateID: tmpl.ID, Domain: mood, Min: 2, Max: 2, Label: "Requiere valoración", Position: 3},
		},
	}
	for domain, ranges := range bands {
		if err := interpRepo.ReplaceDomain(ctx, tmpl.ID, domain, ranges); err != nil {
			log.Fatal().Err(err).Str("domain", domain).Msg("Failed to seed interpretation ranges")
		}
	}
	fmt.Println("Seeded interpretation ranges for 2 domains")

	if err := templateRepo.UpdateStatus(ctx, tmpl.ID, model.TemplateStatusPublished); err != nil {
		log.Fatal().Err(err).Msg("Failed to publish template")
	}

	fmt.Printf("\nDone! Template '%s' published with ID: %s\n", tmpl.Title, tmpl.ID)
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
