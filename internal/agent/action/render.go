package action

import (
	"fmt"
	"strings"

	"github.com/MRamiBalles/werewolf-agent/internal/agent/cognition"
	"github.com/MRamiBalles/werewolf-agent/internal/agent/perception"
	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
)

const (
	// DefaultLastWords is said when there is nothing worth revealing.
	DefaultLastWords = "很遗憾要离开游戏了，希望好人阵营能够获胜！"

	speechFiller   = "大家理性分析，听完所有发言再做决定。"
	maxReportLines = 4
)

// renderSpeech turns a plan into Chinese table talk. Only the seer report
// uses informant vocabulary, so other speeches are never read as claims.
// Report text must not put 好人 or 狼人 after a seat number either.
func renderSpeech(plan cognition.SpeechPlan) string {
	switch plan.Stance {
	case cognition.StanceReport:
		text := "我是预言家，" + reportLines(plan.Checks)
		if plan.Focus > 0 && isReportedWolf(plan.Checks, plan.Focus) {
			return text + fmt.Sprintf("，请大家跟我一起投%d号。", plan.Focus)
		}
		return text + "，请大家相信我的信息。"

	case cognition.StanceFollow:
		return fmt.Sprintf("我站%d号这边，他点出来的%d号问题很大，我觉得今天应该把票集中投给%d号。",
			plan.Informant, plan.Focus, plan.Focus)

	case cognition.StanceDoubt:
		text := fmt.Sprintf("%s同时站出来，两边的说法对不上，我觉得真假还要再看一轮", joinSeats(plan.Claimants))
		if plan.Focus > 0 {
			text += fmt.Sprintf("，今天我先关注%d号。", plan.Focus)
		} else {
			text += "。"
		}
		return text

	case cognition.StanceDeflect:
		text := fmt.Sprintf("%d号的说法我不认可，他这么急着带节奏反而可疑，我觉得他可能是冒充的，大家别被带偏", plan.Informant)
		if plan.Focus > 0 {
			text += fmt.Sprintf("，我更怀疑%d号。", plan.Focus)
		} else {
			text += "。"
		}
		return text

	case cognition.StanceHint:
		if plan.Focus > 0 {
			return fmt.Sprintf("昨晚的情况我心里有数，%d号的状态可能不对，希望大家相信我，今天把票集中到%d号身上。", plan.Focus, plan.Focus)
		}
		return "昨晚的情况我心里有数，现在还不方便多说，大家先听完发言再做决定。"
	}

	if plan.Focus > 0 {
		return fmt.Sprintf("目前场上信息不多，我觉得%d号的发言可能有问题，建议大家重点关注，先听听后面的发言再做判断。", plan.Focus)
	}
	return "目前场上信息不多，我暂时没有明确的怀疑对象，大家多听听发言再做判断。"
}

// renderLastWords reveals what the role can still contribute.
func renderLastWords(role game.RoleKind, rc *game.RoleContext, self int) string {
	switch role {
	case game.RoleSeer:
		checks := rc.Checks()
		if len(checks) == 0 {
			break
		}
		claims := make([]perception.Claim, 0, len(checks))
		for target, good := range checks {
			a := perception.AlignmentAlly
			if !good {
				a = perception.AlignmentAdversary
			}
			claims = append(claims, perception.Claim{Claimant: self, Target: target, Alignment: a})
		}
		return "我是预言家，" + reportLines(claims) + "，请大家记住这些信息。"
	case game.RoleWitch:
		p := rc.Potions()
		var used []string
		if p.Heal {
			used = append(used, "解药")
		}
		if p.Poison {
			used = append(used, "毒药")
		}
		if len(used) > 0 {
			return "我是女巫，" + strings.Join(used, "和") + "已经用过了，希望好人阵营能够获胜！"
		}
		return "我是女巫，两瓶药都还没用，希望好人阵营能够获胜！"
	}
	return DefaultLastWords
}

// reportLines lists wolves first, then the lowest seats, up to maxReportLines.
func reportLines(checks []perception.Claim) string {
	sorted := make([]perception.Claim, len(checks))
	copy(sorted, checks)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && claimLess(sorted[j], sorted[j-1]); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if len(sorted) > maxReportLines {
		sorted = sorted[:maxReportLines]
	}
	parts := make([]string, len(sorted))
	for i, c := range sorted {
		if c.Alignment == perception.AlignmentAdversary {
			parts[i] = fmt.Sprintf("%d号查杀", c.Target)
		} else {
			parts[i] = fmt.Sprintf("%d号金水", c.Target)
		}
	}
	return strings.Join(parts, "，")
}

func claimLess(a, b perception.Claim) bool {
	if a.Alignment != b.Alignment {
		return a.Alignment == perception.AlignmentAdversary
	}
	return a.Target < b.Target
}

func isReportedWolf(checks []perception.Claim, id int) bool {
	for _, c := range checks {
		if c.Target == id && c.Alignment == perception.AlignmentAdversary {
			return true
		}
	}
	return false
}

func joinSeats(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d号", id)
	}
	return strings.Join(parts, "和")
}
