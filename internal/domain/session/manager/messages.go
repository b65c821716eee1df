// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"fmt"
	"strings"

	"github.com/ManuGH/avalon/internal/domain/rules"
	"github.com/ManuGH/avalon/internal/domain/session/model"
)

// Outbound message bodies. Every helper expects the session lock to be held.

const msgAutoCancel = "This room was closed after a period of inactivity. Create a new one to play again."

func mention(s *model.Session, id model.PlayerID) string {
	if p, ok := s.Player(id); ok {
		return p.Mention()
	}
	return "@" + string(id)
}

func mentions(s *model.Session, ids []model.PlayerID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = mention(s, id)
	}
	return strings.Join(parts, ", ")
}

func questRecord(results []rules.QuestResult) string {
	if len(results) == 0 {
		return "-"
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}

func msgCreated(s *model.Session) string {
	return fmt.Sprintf("%s opened an Avalon lobby. Join to play (%d-%d players).",
		mention(s, s.HostID), rules.MinPlayers, rules.MaxPlayers)
}

func msgJoined(s *model.Session, p model.Player) string {
	return fmt.Sprintf("%s joined the lobby (%d/%d).", p.Mention(), len(s.Players), rules.MaxPlayers)
}

func msgLeft(s *model.Session, p model.Player) string {
	return fmt.Sprintf("%s left the room (%d players remain).", p.Mention(), len(s.Players))
}

func msgHostLeft(p model.Player) string {
	return fmt.Sprintf("Host %s left, so the room was closed.", p.Mention())
}

func msgCancelled(p model.Player) string {
	return fmt.Sprintf("%s cancelled the room.", p.Mention())
}

// msgRoundStart announces whose turn it is to propose.
func msgRoundStart(s *model.Session) string {
	leader, _ := s.Leader()
	size, _ := s.TeamSize()
	return fmt.Sprintf("Round %d/%d. Leader %s, propose a team of %d. Quests so far: %s.",
		s.Round, rules.MaxRounds, leader.Mention(), size, questRecord(s.QuestResults))
}

func msgGameStarted(s *model.Session) string {
	return fmt.Sprintf("The game has started with %d players. Check your direct messages for your role.\n%s",
		len(s.Players), msgRoundStart(s))
}

func msgKnowledge(s *model.Session, id model.PlayerID) string {
	role := s.Roles[id]
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s (%s).", role.Label(), role.Alignment())
	seen := rules.BuildKnowledge(id, role, s.Roles)
	if len(seen) == 0 {
		b.WriteString(" You have no special knowledge.")
		return b.String()
	}
	for _, k := range seen {
		fmt.Fprintf(&b, "\n- %s: %s", mention(s, k.PlayerID), knowledgeLabel(k.Reason))
	}
	return b.String()
}

func knowledgeLabel(r rules.KnowledgeReason) string {
	switch r {
	case rules.ReasonEvilSeenByMerlin:
		return "evil"
	case rules.ReasonMerlinOrMorgana:
		return "Merlin or Morgana"
	case rules.ReasonEvilTeammate:
		return "your evil teammate"
	}
	return string(r)
}

func msgProposed(s *model.Session) string {
	leader, _ := s.Leader()
	return fmt.Sprintf("%s proposes %s (proposal %d/5). Everyone vote approve or reject.",
		leader.Mention(), mentions(s, s.CurrentTeam), s.ProposalNumber+1)
}

func msgTeamApproved(s *model.Session, approves, rejects int) string {
	return fmt.Sprintf("Team approved (%d for, %d against). %s, check your direct messages to vote on the quest.",
		approves, rejects, mentions(s, s.CurrentTeam))
}

func msgTeamRejected(s *model.Session, approves, rejects int) string {
	leader, _ := s.Leader()
	return fmt.Sprintf("Team rejected (%d for, %d against). %d proposals left this round. Next leader: %s.",
		approves, rejects, 5-s.ProposalNumber, leader.Mention())
}

func msgRejectionLimit(approves, rejects int) string {
	return fmt.Sprintf("Team rejected (%d for, %d against). Five proposals in a row were rejected: evil wins.",
		approves, rejects)
}

func msgQuestPrompt(s *model.Session, id model.PlayerID) string {
	if s.Roles[id].IsEvil() {
		return fmt.Sprintf("Quest vote for round %d: choose success or fail.", s.Round)
	}
	return fmt.Sprintf("Quest vote for round %d: you can only choose success.", s.Round)
}

func msgQuestTimedOut(missing int) string {
	return fmt.Sprintf("Quest vote timed out. %d missing votes were counted as success.", missing)
}

func msgQuestResult(s *model.Session, result rules.QuestResult, fails int) string {
	return fmt.Sprintf("Quest %s with %d fail votes. Record: %s.", result, fails, questRecord(s.QuestResults))
}

func msgQuestsEvil() string {
	return "Three quests failed: evil wins."
}

func msgAssassinationPhase() string {
	return "Three quests succeeded. The assassin now has one chance to name Merlin."
}

func msgAssassinPrompt(s *model.Session, assassin model.PlayerID) string {
	var targets []model.PlayerID
	for _, id := range s.PlayerIDs() {
		if id != assassin {
			targets = append(targets, id)
		}
	}
	return fmt.Sprintf("You are the assassin. Name Merlin among: %s.", mentions(s, targets))
}

func msgAssassination(s *model.Session, assassin, target model.PlayerID, hit bool) string {
	var b strings.Builder
	if hit {
		fmt.Fprintf(&b, "%s assassinated %s, who was Merlin. Evil wins.", mention(s, assassin), mention(s, target))
	} else {
		fmt.Fprintf(&b, "%s assassinated %s, who was not Merlin. Good wins.", mention(s, assassin), mention(s, target))
		if merlin, ok := rules.MerlinID(s.Roles); ok {
			fmt.Fprintf(&b, " Merlin was %s.", mention(s, merlin))
		}
	}
	b.WriteString("\nRoles:")
	for _, p := range s.Players {
		role := s.Roles[p.ID]
		fmt.Fprintf(&b, "\n- %s: %s (%s)", p.Mention(), role.Label(), role.Alignment())
	}
	return b.String()
}

func msgRestartOpened(s *model.Session, opener model.PlayerID) string {
	need := len(s.Players)/2 + 1
	return fmt.Sprintf("%s asked to restart with the same %d players. %d yes votes restart the game.",
		mention(s, opener), len(s.Players), need)
}

func msgRestartAccepted(yes, no int) string {
	return fmt.Sprintf("Restart accepted (%d yes, %d no). Roles have been dealt again.", yes, no)
}

func msgRestartRejected(yes, no int) string {
	return fmt.Sprintf("Restart rejected (%d yes, %d no).", yes, no)
}

func msgRestartAbandoned(p model.Player) string {
	return fmt.Sprintf("%s left, so the restart vote was called off.", p.Mention())
}
