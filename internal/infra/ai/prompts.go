package ai

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
)

// SystemPrompt frames every request. The backend drafts, the engine decides.
const SystemPrompt = `你是一名经验丰富的狼人杀玩家，正在参加一局多人狼人杀游戏。

## 基本术语
- 预言家说"X号金水/好人" = X是预言家的队友
- 预言家说"X号查杀/狼人" = X是敌人
- 只有一个人跳预言家时，他给出的金水不能投票，查杀优先投票
- 多人跳预言家时，比较谁的发言更自洽

## 输出要求
- 只输出一个JSON对象，不要输出任何其他内容
- 发言必须是中文，控制在80字以内
- 不要暴露你是AI
`

// Prompt is everything a builder needs about the table and the agent.
type Prompt struct {
	PlayerID    int
	Role        game.RoleKind
	Round       int
	Alive       []int
	Teammates   []int
	Summary     string // perception report
	Checks      map[int]bool // target -> is good
	Potions     game.PotionUsage
	Personality string

	// Engine proposal the draft should agree with.
	DraftSpeech string
	DraftVote   int
	DraftReason string
}

// BuildSpeechPrompt asks for a day speech as {"speech": "..."}.
func BuildSpeechPrompt(p Prompt) []Message {
	var sb strings.Builder
	writeHeader(&sb, p)
	sb.WriteString("\n## 参考发言\n\n")
	sb.WriteString(p.DraftSpeech)
	sb.WriteString("\n\n## 任务\n\n")
	sb.WriteString(roleSpeechStrategy(p.Role))
	if p.Role != game.RoleSeer {
		sb.WriteString("发言中不要出现“预言家”“查验”“验人”“金水”“查杀”等词，用“他”或号码指代。\n")
	}
	sb.WriteString("在不改变参考发言立场和投票意向的前提下，把它改写得更自然。\n")
	sb.WriteString(`输出格式: {"speech": "你的发言"}`)
	return []Message{
		{Role: "system", Content: SystemPrompt},
		{Role: "user", Content: sb.String()},
	}
}

// BuildVotePrompt asks for a vote as {"target": N, "reason": "..."}.
func BuildVotePrompt(p Prompt) []Message {
	var sb strings.Builder
	writeHeader(&sb, p)
	sb.WriteString("\n## 引擎建议\n\n")
	if p.DraftVote > 0 {
		fmt.Fprintf(&sb, "投%d号：%s\n", p.DraftVote, p.DraftReason)
	} else {
		sb.WriteString("弃票\n")
	}
	sb.WriteString("\n## 任务\n\n")
	sb.WriteString("从存活玩家中选择一名投票对象，不能投自己")
	if p.Role == game.RoleWerewolf && len(p.Teammates) > 0 {
		sb.WriteString("，不能投狼队友")
	}
	sb.WriteString("。理由控制在30字以内。\n")
	sb.WriteString(`输出格式: {"target": 号码, "reason": "理由"}`)
	return []Message{
		{Role: "system", Content: SystemPrompt},
		{Role: "user", Content: sb.String()},
	}
}

func writeHeader(sb *strings.Builder, p Prompt) {
	fmt.Fprintf(sb, "你是%d号玩家，身份是%s。当前是第%d轮。\n", p.PlayerID, roleName(p.Role), p.Round)
	fmt.Fprintf(sb, "- 存活玩家: [%s]\n", joinIDs(p.Alive))
	if p.Role == game.RoleWerewolf {
		fmt.Fprintf(sb, "- 你的狼人队友: [%s]\n", joinIDs(p.Teammates))
	}
	if p.Role == game.RoleSeer {
		fmt.Fprintf(sb, "- 你的查验结果: %s\n", formatChecks(p.Checks))
	}
	if p.Role == game.RoleWitch {
		fmt.Fprintf(sb, "- 解药: %s，毒药: %s\n", potionState(p.Potions.Heal), potionState(p.Potions.Poison))
	}
	if p.Personality != "" {
		fmt.Fprintf(sb, "- 性格: %s\n", p.Personality)
	}
	if p.Summary != "" {
		sb.WriteString("\n")
		sb.WriteString(p.Summary)
		sb.WriteString("\n")
	}
}

func roleSpeechStrategy(role game.RoleKind) string {
	switch role {
	case game.RoleWerewolf:
		return "作为狼人，伪装成好人，不要暴露队友，也不要攻击有预言家背书的玩家。\n"
	case game.RoleSeer:
		return "作为预言家，在合适的时机公布查验结果，引导好人投票。\n"
	case game.RoleWitch:
		return "作为女巫，隐藏身份，适当暗示昨晚的信息。\n"
	default:
		return "作为村民，跟随可信的信息发言，不要针对被担保的好人。\n"
	}
}

func roleName(role game.RoleKind) string {
	switch role {
	case game.RoleWerewolf:
		return "狼人"
	case game.RoleSeer:
		return "预言家"
	case game.RoleWitch:
		return "女巫"
	default:
		return "村民"
	}
}

func formatChecks(checks map[int]bool) string {
	if len(checks) == 0 {
		return "暂无查验结果"
	}
	ids := make([]int, 0, len(checks))
	for id := range checks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		verdict := "好人"
		if !checks[id] {
			verdict = "狼人"
		}
		parts = append(parts, fmt.Sprintf("%d号是%s", id, verdict))
	}
	return strings.Join(parts, "，")
}

func potionState(used bool) string {
	if used {
		return "已使用"
	}
	return "未使用"
}

func joinIDs(ids []int) string {
	if len(ids) == 0 {
		return "无"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d号", id)
	}
	return strings.Join(parts, "、")
}
