package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type seedQuote struct {
	Text   string
	Author string
	Tags   []string
}

// starterQuotes is the catalog a fresh deployment starts with.
var starterQuotes = []seedQuote{
	{"The only way to do great work is to love what you do.", "Steve Jobs", []string{"Motivation", "Business", "Success"}},
	{"Innovation distinguishes between a leader and a follower.", "Steve Jobs", []string{"Business", "Innovation", "Leadership"}},
	{"Life is what happens to you while you're busy making other plans.", "John Lennon", []string{"Motivation", "Life"}},
	{"The future belongs to those who believe in the beauty of their dreams.", "Eleanor Roosevelt", []string{"Motivation", "Dreams", "Success"}},
	{"It is during our darkest moments that we must focus to see the light.", "Aristotle", []string{"Motivation", "Persistence", "Wisdom"}},
	{"The way to get started is to quit talking and begin doing.", "Walt Disney", []string{"Motivation", "Action", "Business"}},
	{"Don't let yesterday take up too much of today.", "Will Rogers", []string{"Motivation", "Life", "Wisdom"}},
	{"You learn more from failure than from success. Don't let it stop you. Failure builds character.", "Unknown", []string{"Motivation", "Persistence", "Learning"}},
	{"If you are working on something that you really care about, you don't have to be pushed. The vision pulls you.", "Steve Jobs", []string{"Motivation", "Passion", "Business"}},
	{"Experience is a hard teacher because she gives the test first, the lesson afterward.", "Vernon Law", []string{"Education", "Learning", "Sports", "Wisdom"}},
	{"Knowing is not enough; we must apply. Wishing is not enough; we must do.", "Johann Wolfgang von Goethe", []string{"Action", "Learning", "Motivation"}},
	{"Whether you think you can or you think you can't, you're right.", "Henry Ford", []string{"Motivation", "Mindset", "Business"}},
	{"I have not failed. I've just found 10,000 ways that won't work.", "Thomas A. Edison", []string{"Persistence", "Science", "Innovation"}},
	{"A person who never made a mistake never tried anything new.", "Albert Einstein", []string{"Learning", "Science", "Innovation"}},
	{"If you want to lift yourself up, lift up someone else.", "Booker T. Washington", []string{"Leadership", "Motivation", "Education"}},
	{"To live a creative life, we must lose our fear of being wrong.", "Joseph Chilton Pearce", []string{"Creativity", "Motivation", "Art"}},
	{"Success is not final, failure is not fatal: it is the courage to continue that counts.", "Winston Churchill", []string{"Persistence", "Motivation", "Success"}},
	{"The only impossible journey is the one you never begin.", "Tony Robbins", []string{"Motivation", "Action", "Success"}},
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the starter catalog into an empty deployment",
		Long:  "Creates the built-in starter quotes. Quotes that already exist as near-duplicates are skipped, so the command is safe to re-run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			created, skipped := 0, 0
			for _, q := range starterQuotes {
				_, err := container.QuoteService.CreateQuote(cmd.Context(), q.Text, q.Author, q.Tags, "seed", false)
				if err != nil {
					container.Logger.Debug("Skipping starter quote",
						zap.String("author", q.Author),
						zap.Error(err))
					skipped++
					continue
				}
				created++
			}

			fmt.Printf("Seeded %d quotes, skipped %d\n", created, skipped)
			return nil
		},
	}
}
