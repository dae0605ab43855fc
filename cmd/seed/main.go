package main

import (
	"flag"
	"log"
	"time"

	"github.com/noah-isme/lms-insights-api/internal/seed"
)

func main() {
	users := flag.Int("users", 40, "number of student accounts")
	courses := flag.Int("courses", 4, "number of courses")
	days := flag.Int("days", 30, "length of the activity window in days")
	seedVal := flag.Int64("seed", 42, "random seed")
	out := flag.String("out", "./sample_data", "output directory for CSV files")
	flag.Parse()

	gen, err := seed.NewGenerator(seed.Options{
		Users:   *users,
		Courses: *courses,
		Days:    *days,
		Seed:    *seedVal,
	}, time.Now().UTC())
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	snap := gen.Generate()
	if err := seed.WriteCSV(snap, *out); err != nil {
		log.Fatalf("seed: %v", err)
	}

	log.Printf("wrote demo dataset to %s: %d users, %d courses, %d submissions, %d events",
		*out, len(snap.Users), len(snap.Courses), len(snap.Submissions), len(snap.Events))
}
