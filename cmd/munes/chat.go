package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/munes-ai/munes/internal/app"
	"github.com/munes-ai/munes/internal/config"
	"github.com/munes-ai/munes/internal/memory"
)

// demoMemories seeds the chat demo so retrieval has something to find.
var demoMemories = []memory.StoreInput{
	{
		Content:          "زيارة حديقة الأزهر مع العائلة في الربيع، كان الجو جميلاً وتناولنا الغداء معاً",
		MemoryType:       memory.TypeEpisodic,
		EmotionalContext: memory.EmotionPositive,
		Tags:             []string{"عائلة", "نزهة"},
	},
	{
		Content:          "عيد ميلاد الحفيد محمد الخامس، أطفأ الشموع وغنينا له جميعاً",
		MemoryType:       memory.TypeEpisodic,
		EmotionalContext: memory.EmotionVeryPositive,
		Tags:             []string{"عائلة", "عيد ميلاد"},
	},
	{
		Content:          "رحلة الإسكندرية صيف 2010، الجلوس على الكورنيش ومشاهدة البحر",
		MemoryType:       memory.TypeEpisodic,
		EmotionalContext: memory.EmotionPositive,
		Tags:             []string{"سفر", "بحر"},
	},
}

func newChatCmd() *cobra.Command {
	var patientID string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run an interactive therapeutic session in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runChat(cmd.Context(), cfg, logger, patientID)
		},
	}
	cmd.Flags().StringVar(&patientID, "patient", "demo-patient", "patient identifier for the session")
	return cmd
}

func runChat(ctx context.Context, cfg config.Config, logger *zap.Logger, patientID string) error {
	built, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer built.Cleanup()

	if built.Store.Count() == 0 {
		for _, in := range demoMemories {
			if _, err := built.Store.Store(ctx, in); err != nil {
				return fmt.Errorf("seed demo memory: %w", err)
			}
		}
	}

	sessionID, err := built.Sessions.StartSession(ctx, patientID)
	if err != nil {
		return err
	}

	snap, err := built.Sessions.CurrentContext(sessionID)
	if err != nil {
		return err
	}
	fmt.Printf("جلسة جديدة (%s)\n", snap.SessionID)
	fmt.Println("اكتب رسالتك، أو «خروج» لإنهاء الجلسة.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "خروج" || strings.EqualFold(line, "exit") {
			break
		}

		res, err := built.Sessions.ProcessInput(ctx, sessionID, line, "", "")
		if err != nil {
			return err
		}
		fmt.Printf("[%s] %s\n", res.NewState, res.ResponseText)
		for _, s := range res.TherapeuticSuggestions {
			fmt.Printf("  اقتراح: %s\n", s)
		}
		for _, trig := range res.MemoryTriggers {
			fmt.Printf("  محفز للذاكرة: %s\n", trig)
		}
	}

	summary, err := built.Sessions.EndSession(ctx, sessionID)
	if err != nil {
		return err
	}
	fmt.Printf("\nانتهت الجلسة بعد %.1f دقيقة و%d مداخلة.\n",
		summary.DurationMinutes, summary.TotalTurns)
	if len(summary.GoalsAchieved) > 0 {
		fmt.Printf("أهداف محققة: %s\n", strings.Join(summary.GoalsAchieved, "، "))
	}
	return scanner.Err()
}
