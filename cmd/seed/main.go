package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"agent-promosi/internal/config"
	"agent-promosi/internal/domain"
	"agent-promosi/internal/domain/model"
	"agent-promosi/internal/domain/ports/repository"
	"agent-promosi/internal/infra/api"
	pg "agent-promosi/internal/infra/db/postgres"
	"agent-promosi/internal/infra/logging"
	"agent-promosi/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	mintTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of the printed dev tokens")
	flag.Parse()

	// ---- Config ----
	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Connect Postgres
	cfg.Database.MaxConns = 4
	pool, err := pg.NewPgxPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	jobRepo := pg.NewJobRepo(pool)
	profileRepo := pg.NewProfileRepo(pool)
	jobUC := usecase.NewJobUseCase(jobRepo, pg.NewApplicationRepo(pool), pg.NewTxManager(pool), cfg.Jobs, logger)

	// ---- Profiles ----
	now := time.Now().UTC()
	profiles := []*model.Profile{
		{ID: "00000000-0000-0000-0000-000000000001", Email: "admin@promosi.go.id", FullName: "Admin Promosi", Role: model.RoleAdmin},
		{ID: "00000000-0000-0000-0000-000000000002", Email: "pegawai@promosi.go.id", FullName: "Siti Rahma", Department: "Biro SDM", Position: "Analis Kepegawaian", Role: model.RolePegawai},
	}
	for _, p := range profiles {
		if _, err := profileRepo.FindByID(ctx, repository.NoTX, p.ID); err == nil {
			fmt.Printf("profile %s already present\n", p.Email)
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			log.Fatalf("find profile %s: %v", p.Email, err)
		}
		p.CreatedAt, p.UpdatedAt = now, now
		if err := profileRepo.Save(ctx, repository.NoTX, p); err != nil {
			log.Fatalf("save profile %s: %v", p.Email, err)
		}
		fmt.Printf("seeded profile: %s (%s)\n", p.Email, p.Role)
	}

	// ---- Job listings ----
	// If listings already exist, do nothing
	jobs, err := jobUC.List(ctx, model.JobFilter{})
	if err != nil {
		log.Fatalf("list jobs: %v", err)
	}
	if len(jobs) > 0 {
		fmt.Printf("%d job listings already present. No changes.\n", len(jobs))
	} else {
		for _, d := range seedJobs(now) {
			j, err := jobUC.Create(ctx, d)
			if err != nil {
				log.Fatalf("create job %q: %v", d.Title, err)
			}
			fmt.Printf("seeded: %s @ %s (status=%s)\n", j.Title, j.Institution, j.Status)
		}
	}

	// ---- Dev tokens ----
	auth := api.NewAuthenticator(cfg.Auth)
	for _, p := range profiles {
		tok, err := auth.Mint(p.ID, *mintTTL)
		if err != nil {
			log.Fatalf("mint token: %v", err)
		}
		fmt.Printf("token %s: %s\n", p.Email, tok)
	}

	fmt.Println("✅ Seeding complete.")
}

func seedJobs(now time.Time) []model.JobDraft {
	day := 24 * time.Hour
	return []model.JobDraft{
		{
			Title: "Sekretaris Daerah", Institution: "Pemerintah Kab. Merangin", InstitutionType: "Pemerintah Daerah",
			Location: "Merangin, Jambi", Education: "S-1/Sarjana", Experience: "Minimal 60 bulan", Salary: "Rp. 0",
			Deadline:     now.Add(21 * day),
			Description:  "Seleksi terbuka JPT Pratama Sekretaris Daerah.",
			Requirements: []string{"PNS aktif", "Pangkat minimal Pembina Tk. I (IV/b)", "Sehat jasmani dan rohani"},
		},
		{
			Title: "Kepala Dinas Kesehatan", Institution: "Pemerintah Kota Padang Panjang", InstitutionType: "Pemerintah Daerah",
			Location: "Padang Panjang, Sumatera Barat", Education: "Diploma IV", Experience: "Minimal 60 bulan", Salary: "Rp. 2.025.000",
			Deadline:     now.Add(5 * day),
			Requirements: []string{"PNS aktif", "Latar belakang kesehatan"},
		},
		{
			Title: "Inspektur", Institution: "Pemerintah Kota Padang Panjang", InstitutionType: "Pemerintah Daerah",
			Location: "Padang Panjang, Sumatera Barat", Education: "Diploma IV", Experience: "Minimal 60 bulan", Salary: "Rp. 2.025.000",
			Deadline: now.Add(30 * day),
		},
		{
			Title: "Direktur Penyelidikan", Institution: "Komisi Pemberantasan Korupsi", InstitutionType: "Lembaga Negara",
			Location: "Jakarta Pusat", Education: "S-1/Sarjana", Experience: "Minimal 56 bulan", Salary: "Rp. 0",
			Deadline: now.Add(14 * day),
		},
		{
			Title: "Direktur Penuntutan", Institution: "Komisi Pemberantasan Korupsi", InstitutionType: "Lembaga Negara",
			Location: "Jakarta Pusat", Education: "S-1/Sarjana", Experience: "Minimal 56 bulan", Salary: "Rp. 0",
			Deadline: now.Add(14 * day),
		},
	}
}
