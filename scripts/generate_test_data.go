package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/habitlog/internal/config"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/service"
	"github.com/habitlog/internal/tracker"
)

// 测试数据生成器：为现有习惯补齐一段打卡历史
func main() {
	var days int
	var seed uint64
	flag.IntVar(&days, "days", 60, "number of days of history to generate")
	flag.Uint64Var(&seed, "seed", 42, "random seed")
	flag.Parse()

	// 初始化数据库
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	ctx := context.Background()
	svc, err := service.NewTrackerService(ctx, service.NewSnapshotStore(db.DB, cfg.DocumentKey))
	if err != nil {
		log.Fatal("加载文档失败:", err)
	}

	fmt.Println("开始生成测试数据...")

	createTestHabits(ctx, svc)
	marked := createTestHistory(ctx, svc, time.Now(), days, rand.New(rand.NewPCG(seed, seed)))

	meta := svc.Meta()
	fmt.Println("测试数据生成完成！")
	fmt.Printf("习惯: %d 个进行中, %d 个已归档\n", meta.Active, meta.Archived)
	fmt.Printf("打卡: %d 条, 覆盖 %d 天\n", marked, meta.LogDays)
}

// 创建测试习惯，已有同名习惯时跳过
func createTestHabits(ctx context.Context, svc *service.TrackerService) {
	inputs := []tracker.HabitInput{
		{Name: "Read", Icon: "📚", Color: "#8b5cf6", Schedule: []int{1, 2, 3, 4, 5}, ReminderTime: "21:30", Notes: "20 pages before bed."},
		{Name: "Stretch", Icon: "🧘", Color: "#10b981", Schedule: []int{6, 7}},
	}

	for _, input := range inputs {
		if len(svc.ListHabits(tracker.HabitFilter{Query: input.Name})) > 0 {
			fmt.Printf("习惯 %s 已存在，跳过创建\n", input.Name)
			continue
		}
		if _, err := svc.CreateHabit(ctx, input); err != nil {
			if _, ok := service.AsPersistenceWarning(err); !ok {
				log.Printf("创建习惯 %s 失败: %v", input.Name, err)
			}
		}
	}
}

// 为截止 end 的最近 days 天内所有应打卡习惯随机写入完成记录，返回写入条数
func createTestHistory(ctx context.Context, svc *service.TrackerService, end time.Time, days int, rng *rand.Rand) int {
	marked := 0
	for offset := days - 1; offset >= 0; offset-- {
		date := tracker.CanonicalDate(end.AddDate(0, 0, -offset))
		items, err := svc.DayView(date)
		if err != nil {
			log.Printf("读取 %s 失败: %v", date, err)
			continue
		}

		for _, item := range items {
			// 约七成的完成率，保证统计与连胜都有数据
			if rng.IntN(10) >= 7 {
				continue
			}
			if _, err := svc.SetDone(ctx, item.Habit.ID, date, true); err != nil {
				if _, ok := service.AsPersistenceWarning(err); !ok {
					log.Printf("写入 %s/%s 失败: %v", date, item.Habit.Name, err)
					continue
				}
			}
			marked++
		}
	}
	return marked
}
