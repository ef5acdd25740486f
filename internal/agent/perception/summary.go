package perception

import (
	"fmt"
	"strings"

	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
)

// maxSummaryProfiles limits the profile section to control token usage.
const maxSummaryProfiles = 8

// Summarize builds a prompt-ready situation report.
func Summarize(rc *game.RoleContext, r Regime, profiles []PlayerProfile) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## 态势分析摘要 (第%d轮)\n", rc.Round))
	sb.WriteString(fmt.Sprintf("- 存活玩家: %s\n", joinIDs(rc.AliveIDs())))
	sb.WriteString(fmt.Sprintf("- 预言家局面: %s\n", phaseLabel(r)))
	if len(r.ProtectedTargets) > 0 {
		sb.WriteString(fmt.Sprintf("- 金水: %s\n", joinIDs(r.ProtectedTargets)))
	}
	if len(r.SuspectTargets) > 0 {
		sb.WriteString(fmt.Sprintf("- 查杀: %s\n", joinIDs(r.SuspectTargets)))
	}

	if len(profiles) > 0 {
		sb.WriteString("- 玩家档案:\n")
		for i, p := range profiles {
			if i >= maxSummaryProfiles {
				break
			}
			status := "存活"
			if !p.IsAlive {
				status = "死亡"
			}
			evidence := "暂无"
			if len(p.Evidence) > 0 {
				evidence = strings.Join(p.Evidence, "; ")
			}
			sb.WriteString(fmt.Sprintf("  - 玩家 %d (%s): 可疑度 %d%%, 标签 [%s], 证据: %s\n",
				p.ID, status, int(p.Suspicion*100+0.5), strings.Join(p.Tags, ", "), evidence))
		}
	}
	return sb.String()
}

func phaseLabel(r Regime) string {
	switch r.Phase {
	case PhaseSingle:
		return fmt.Sprintf("单预言家 (%d号)", r.SelectedInformant)
	case PhaseConflict:
		return fmt.Sprintf("对跳 (%s)", joinIDs(r.Claimants))
	}
	return "无人起跳"
}

func joinIDs(ids []int) string {
	if len(ids) == 0 {
		return "无"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d号", id)
	}
	return strings.Join(parts, ", ")
}
