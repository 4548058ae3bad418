package grpc

import (
	"time"

	pb "github.com/godilite/maturity-server/api/v1"
	"github.com/godilite/maturity-server/internal/benchmark"
	"github.com/godilite/maturity-server/internal/domain"
	"github.com/godilite/maturity-server/internal/narrative"
	"github.com/godilite/maturity-server/internal/scoring"
	"github.com/godilite/maturity-server/internal/service"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func toTimestamp(t time.Time) *timestamppb.Timestamp {
	if t.IsZero() {
		return nil
	}
	return timestamppb.New(t)
}

func toAssessmentResponse(a service.Assessment) *pb.AssessmentResponse {
	cats := make([]*pb.CategoryScore, len(a.Categories))
	for i, c := range a.Categories {
		cats[i] = &pb.CategoryScore{
			Key:          c.Key,
			Title:        c.Title,
			Score:        c.Score,
			DisplayScore: scoring.RoundDisplay(c.Score),
			Level:        c.Level,
		}
	}
	return &pb.AssessmentResponse{
		ResultId: a.ResultID,
		Created:  a.Created,
		Respondent: &pb.Respondent{
			Name:        a.Respondent.Name,
			Email:       a.Respondent.Email,
			Company:     a.Respondent.Company,
			Industry:    a.Respondent.Industry,
			CompanySize: a.Respondent.CompanySize,
		},
		Categories:     cats,
		OverallScore:   a.Overall,
		OverallDisplay: scoring.RoundDisplay(a.Overall),
		Level:          a.Level,
		Plan:           toPlanItems(a.Plan),
		CreatedAt:      toTimestamp(a.CreatedAt),
		UpdatedAt:      toTimestamp(a.UpdatedAt),
	}
}

func toPlanItems(plan []domain.PlanEntry) []*pb.PlanItem {
	out := make([]*pb.PlanItem, len(plan))
	for i, e := range plan {
		out[i] = &pb.PlanItem{
			Id:           e.Item.ID,
			Category:     e.Item.CategoryKey,
			Priority:     string(e.Priority),
			Tier:         string(e.Item.Tier),
			Title:        e.Item.Title,
			Description:  e.Item.Description,
			Actions:      e.Item.Actions,
			Kpis:         e.Item.KPIs,
			DisplayOrder: int32(e.DisplayOrder),
			RankKey:      int32(e.RankKey),
		}
	}
	return out
}

func toBenchmarkResponse(id string, rep benchmark.Report) *pb.BenchmarkResponse {
	cats := make([]*pb.CategoryBenchmark, len(rep.Categories))
	for i, c := range rep.Categories {
		cats[i] = &pb.CategoryBenchmark{
			Key:         c.CategoryKey,
			Score:       c.Score,
			SampleCount: int32(c.SampleCount),
			Average:     c.Average,
			Percentile:  c.Percentile,
			TopPercent:  c.TopPercent,
			Gap:         c.Gap,
		}
	}
	return &pb.BenchmarkResponse{
		ResultId:          id,
		Categories:        cats,
		OverallAverage:    rep.OverallAverage,
		OverallPercentile: rep.OverallPercentile,
		SampleSize:        int32(rep.SampleSize),
		Industry:          rep.Industry,
		FilterApplied:     rep.FilterApplied,
		Sufficient:        rep.Sufficient,
		NoData:            rep.NoData,
		Message:           rep.Message,
	}
}

func toNarrativeResponse(id string, resp narrative.Response) *pb.NarrativeResponse {
	n := resp.Narrative
	insights := make([]*pb.CategoryInsight, len(n.CategoryAnalysis))
	for i, ci := range n.CategoryAnalysis {
		insights[i] = &pb.CategoryInsight{
			Category:  ci.Category,
			Score:     ci.Score,
			RootCause: ci.RootCause,
			Impact:    ci.Impact,
			QuickWins: ci.QuickWins,
		}
	}
	return &pb.NarrativeResponse{
		ResultId: id,
		Narrative: &pb.Narrative{
			ExecutiveSummary: n.ExecutiveSummary,
			CategoryAnalysis: insights,
			PriorityMatrix: &pb.PriorityMatrix{
				QuickWins:     n.PriorityMatrix.QuickWins,
				MajorProjects: n.PriorityMatrix.MajorProjects,
				FillIns:       n.PriorityMatrix.FillIns,
				Deprioritize:  n.PriorityMatrix.Deprioritize,
			},
			Interdependencies: n.Interdependencies,
			IndustryContext:   n.IndustryContext,
		},
		Source:      string(resp.Source),
		Cached:      resp.Cached,
		IsFallback:  resp.IsFallback,
		GeneratedAt: toTimestamp(resp.GeneratedAt),
	}
}

func toCategoriesResponse(view service.CatalogView) *pb.ListCategoriesResponse {
	byCategory := make(map[int64][]*pb.Question, len(view.Categories))
	for _, q := range view.Questions {
		byCategory[q.CategoryID] = append(byCategory[q.CategoryID], &pb.Question{
			Id:     q.ID,
			Prompt: q.Prompt,
			Weight: int32(q.Weight),
		})
	}
	out := make([]*pb.Category, len(view.Categories))
	for i, c := range view.Categories {
		out[i] = &pb.Category{Id: c.ID, Key: c.Key, Title: c.Title, Questions: byCategory[c.ID]}
	}
	return &pb.ListCategoriesResponse{Categories: out}
}
