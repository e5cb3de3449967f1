package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fluentpath/ielts-backend/internal/config"
	"github.com/fluentpath/ielts-backend/internal/database"
	"github.com/fluentpath/ielts-backend/internal/logger"
	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/fluentpath/ielts-backend/internal/repository"
	"github.com/fluentpath/ielts-backend/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a demo course tree, a batch of learners, one grader, and sample
// submissions in both source tables so the grading queue has data to show.
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

	learnerRepo := repository.NewLearnerRepository(pool)
	graderRepo := repository.NewGraderRepository(pool)

	learnerService := service.NewLearnerService(learnerRepo)
	graderService := service.NewGraderService(graderRepo)

	fmt.Println("=== Seeding Demo Data ===")

	// ─── Course Tree ───────────────────────────────────────────────────
	courseTitle := "IELTS Academic Band 7+"
	var courseID uuid.UUID
	err = pool.QueryRow(ctx, "SELECT id FROM courses WHERE title = $1", courseTitle).Scan(&courseID)
	if err != nil {
		if err != pgx.ErrNoRows {
			log.Fatal().Err(err).Msg("Failed to check existing course")
		}
		err = pool.QueryRow(ctx,
			`INSERT INTO courses (title, description) VALUES ($1, $2) RETURNING id`,
			courseTitle, "A structured path to Band 7 and beyond across all four skills.",
		).Scan(&courseID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create course")
		}
		fmt.Printf("Created course with ID: %s\n", courseID)
	} else {
		fmt.Printf("Found existing course with ID: %s\n", courseID)
	}

	units := []struct {
		Title   string
		Lessons []string
	}{
		{"Writing Foundations", []string{
			"Understanding Task 1", "Describing Trends", "Task 2 Essay Structure", "Coherence and Cohesion",
		}},
		{"Speaking Confidence", []string{
			"Part 1 Warm-up Topics", "Part 2 Cue Cards", "Part 3 Abstract Discussion",
		}},
	}

	lessonIDs := make([]uuid.UUID, 0)
	for ui, u := range units {
		var unitID uuid.UUID
		err = pool.QueryRow(ctx,
			`INSERT INTO units (course_id, title, order_num) VALUES ($1, $2, $3) RETURNING id`,
			courseID, u.Title, ui+1,
		).Scan(&unitID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create unit")
		}
		for li, title := range u.Lessons {
			var lessonID uuid.UUID
			err = pool.QueryRow(ctx,
				`INSERT INTO lessons (unit_id, title, order_num) VALUES ($1, $2, $3) RETURNING id`,
				unitID, title, li+1,
			).Scan(&lessonID)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to create lesson")
			}
			lessonIDs = append(lessonIDs, lessonID)
		}
	}
	fmt.Printf("Created %d units with %d lessons\n", len(units), len(lessonIDs))

	// ─── Accounts ──────────────────────────────────────────────────────
	hash, err := bcrypt.GenerateFromPassword([]byte("fluentpath"), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	names := []string{
		"Aisha Rahman", "Minh Nguyen", "Carlos Mendoza", "Yuki Tanaka", "Fatima Al-Sayed",
		"Lukas Novak", "Priya Sharma", "Wei Chen", "Elena Petrova", "Ahmed Hassan",
	}

	targetBand := 7.0
	learnerIDs := make([]int, 0, len(names))
	for i, name := range names {
		learner := &model.Learner{
			Email:        fmt.Sprintf("learner%d@fluentpath.dev", i+1),
			Name:         name,
			PasswordHash: string(hash),
			TargetBand:   &targetBand,
		}
		if err := learnerService.Create(ctx, learner); err != nil {
			fmt.Printf("Error creating learner %s: %v\n", name, err)
			continue
		}
		learnerIDs = append(learnerIDs, learner.ID)
	}
	fmt.Printf("Created %d learners\n", len(learnerIDs))

	grader := &model.Grader{
		Email:        "grader@fluentpath.dev",
		Name:         "Dana Whitfield",
		PasswordHash: string(hash),
		Permissions:  []string{model.PermissionGradingRead, model.PermissionGradingWrite},
	}
	if err := graderService.Create(ctx, grader); err != nil {
		fmt.Printf("Error creating grader: %v\n", err)
	} else {
		fmt.Printf("Created grader with ID: %d\n", grader.ID)
	}

	if len(learnerIDs) == 0 || len(lessonIDs) == 0 {
		fmt.Println("No learners or lessons seeded; skipping submissions")
		return
	}

	// ─── Exercise Submissions ──────────────────────────────────────────
	exerciseCount := 0
	for i, learnerID := range learnerIDs {
		lessonID := lessonIDs[i%len(lessonIDs)]
		skill := model.SkillWriting
		if i%3 == 0 {
			skill = model.SkillSpeaking
		}
		_, err := pool.Exec(ctx,
			`INSERT INTO exercise_submissions (learner_id, lesson_id, skill_type, status, body, submitted_at)
			 VALUES ($1, $2, $3, $4, $5, NOW() - make_interval(hours => $6))`,
			learnerID, lessonID, skill, model.StatusPending,
			"The chart illustrates changes in household energy consumption over three decades.",
			i,
		)
		if err != nil {
			fmt.Printf("Error creating exercise submission: %v\n", err)
			continue
		}
		exerciseCount++
	}
	fmt.Printf("Created %d exercise submissions\n", exerciseCount)

	// ─── Test Attempt with Repeated Grading Passes ─────────────────────
	// Two rows for the same (attempt, question) pair: a stale PENDING pass
	// and a later GRADED one, so deduplication has real work to do.
	var attemptID uuid.UUID
	err = pool.QueryRow(ctx,
		`INSERT INTO test_attempts (learner_id, test_title) VALUES ($1, $2) RETURNING id`,
		learnerIDs[0], "Mock Test 1: Writing",
	).Scan(&attemptID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create test attempt")
	}

	questionID := uuid.New()
	_, err = pool.Exec(ctx,
		`INSERT INTO test_question_submissions (attempt_id, question_id, learner_id, skill_type, status, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, NOW() - INTERVAL '2 hours')`,
		attemptID, questionID, learnerIDs[0], model.SkillWriting, model.StatusPending,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create pending test row")
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO test_question_submissions (
			attempt_id, question_id, learner_id, skill_type, status,
			task_achievement_score, coherence_cohesion_score,
			lexical_resource_score, grammatical_range_score,
			overall_band_score, submitted_at, graded_at)
		 VALUES ($1, $2, $3, $4, $5, 6.0, 6.5, 7.0, 6.5, 6.5, NOW() - INTERVAL '1 hour', NOW())`,
		attemptID, questionID, learnerIDs[0], model.SkillWriting, model.StatusGraded,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create graded test row")
	}
	fmt.Println("Created test attempt with duplicate grading passes")

	fmt.Println("\nSeed completed!")
}
