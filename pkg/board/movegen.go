package board

// MaxMovesPerPosition is a safe upper bound on the number of pseudo-legal moves reachable from
// any single legal chess position (the true maximum is 218). Used to size move stacks.
const MaxMovesPerPosition = 224

// NewMoveStack allocates a contiguous move buffer large enough for maxDepth nested calls to
// GenerateMoves, one ply's worth of capacity per recursion level. The generator writes starting
// at a caller-provided cursor; the buffer is never reallocated mid-search, so recursion simply
// consumes successive suffixes of it.
func NewMoveStack(maxDepth int) []Move {
	if maxDepth < 1 {
		maxDepth = 1
	}
	return make([]Move, maxDepth*MaxMovesPerPosition)
}

// promotionKinds lists the four promotion pieces in the order the generator emits them.
var promotionKinds = [4]PieceKind{Queen, Rook, Knight, Bishop}

// queenDirections is the union of the bishop and rook directions.
var queenDirections = [8]Direction{DirNW, DirNE, DirSE, DirSW, DirN, DirS, DirE, DirW}

func pawnPushDirection(c Color) Direction {
	if c == White {
		return DirN
	}
	return DirS
}

// GenerateMoves emits every pseudo-legal move for the side to move into stack, starting at
// cursor, and returns the one-past-end cursor. It never reallocates or deduplicates. Legality
// (king safety) is not checked here -- only whether the destination is on the board and not
// occupied by a piece of the same side; see Position.DefendersKingIsInCheck.
func GenerateMoves(p *Position, stack []Move, cursor int) int {
	mover := p.Turn()
	defender := mover.Opponent()
	own := p.All(mover)
	enemy := p.All(defender)
	occ := own | enemy

	cursor = genPawnMoves(p, mover, occ, enemy, stack, cursor)
	cursor = genJumperMoves(p, mover, defender, Knight, KnightAttacks, own, enemy, stack, cursor)
	cursor = genSliderMoves(p, mover, defender, Bishop, bishopDirections[:], own, enemy, stack, cursor)
	cursor = genSliderMoves(p, mover, defender, Rook, rookDirections[:], own, enemy, stack, cursor)
	cursor = genSliderMoves(p, mover, defender, Queen, queenDirections[:], own, enemy, stack, cursor)
	cursor = genJumperMoves(p, mover, defender, King, KingAttacks, own, enemy, stack, cursor)
	cursor = genCastling(p, mover, occ, stack, cursor)
	return cursor
}

func genPawnMoves(p *Position, mover Color, occ, enemy Bitboard, stack []Move, cursor int) int {
	promoRank := PawnPromotionRank(mover)
	homeRank := PawnHomeRank(mover)
	dir := pawnPushDirection(mover)
	defender := mover.Opponent()

	epSq, hasEP := p.EnPassant()

	bb := p.Piece(mover, Pawn)
	for bb != EmptyBitboard {
		from := bb.PopLSB()

		captures := PawnAttacksFrom(mover, from) & enemy
		for captures != EmptyBitboard {
			to := captures.PopLSB()
			capturedKind := p.PieceKindOn(defender, to)
			if to.Rank() == promoRank {
				for _, promo := range promotionKinds {
					stack[cursor] = NewMove(from, to, Pawn, capturedKind, promo, MovePromotion)
					cursor++
				}
			} else {
				stack[cursor] = NewMove(from, to, Pawn, capturedKind, NoPiece, MoveCapture)
				cursor++
			}
		}

		if hasEP && PawnAttacksFrom(mover, from)&BitMask(epSq) != 0 {
			stack[cursor] = NewMove(from, epSq, Pawn, Pawn, NoPiece, MoveEnPassant)
			cursor++
		}

		single := step(BitMask(from), dir) &^ occ
		if single != EmptyBitboard {
			to := single.LSB()
			if to.Rank() == promoRank {
				for _, promo := range promotionKinds {
					stack[cursor] = NewMove(from, to, Pawn, NoPiece, promo, MovePromotion)
					cursor++
				}
			} else {
				stack[cursor] = NewMove(from, to, Pawn, NoPiece, NoPiece, MovePawnPush)
				cursor++
			}

			if from.Rank() == homeRank {
				if double := step(single, dir) &^ occ; double != EmptyBitboard {
					stack[cursor] = NewMove(from, double.LSB(), Pawn, NoPiece, NoPiece, MovePawnDouble)
					cursor++
				}
			}
		}
	}
	return cursor
}

// genJumperMoves generates moves for a piece kind whose reach is a fixed per-square attack table
// (knights and kings): every attacked square not occupied by a piece of the same side is either a
// quiet move or a capture.
func genJumperMoves(p *Position, mover, defender Color, kind PieceKind, attacks func(Square) Bitboard, own, enemy Bitboard, stack []Move, cursor int) int {
	bb := p.Piece(mover, kind)
	for bb != EmptyBitboard {
		from := bb.PopLSB()
		targets := attacks(from) &^ own
		for targets != EmptyBitboard {
			to := targets.PopLSB()
			if enemy.IsSet(to) {
				stack[cursor] = NewMove(from, to, kind, p.PieceKindOn(defender, to), NoPiece, MoveCapture)
			} else {
				stack[cursor] = NewMove(from, to, kind, NoPiece, NoPiece, MoveQuiet)
			}
			cursor++
		}
	}
	return cursor
}

// genSliderMoves generates moves for a ray-sliding piece kind (bishop, rook, queen) by walking one
// step at a time in each of its directions until a blocker or the board edge is reached.
func genSliderMoves(p *Position, mover, defender Color, kind PieceKind, dirs []Direction, own, enemy Bitboard, stack []Move, cursor int) int {
	bb := p.Piece(mover, kind)
	for bb != EmptyBitboard {
		from := bb.PopLSB()
		for _, d := range dirs {
			cur := BitMask(from)
			for i := 0; i < 7; i++ {
				cur = step(cur, d)
				if cur == EmptyBitboard {
					break
				}
				to := cur.LSB()
				if own.IsSet(to) {
					break
				}
				if enemy.IsSet(to) {
					stack[cursor] = NewMove(from, to, kind, p.PieceKindOn(defender, to), NoPiece, MoveCapture)
					cursor++
					break
				}
				stack[cursor] = NewMove(from, to, kind, NoPiece, NoPiece, MoveQuiet)
				cursor++
			}
		}
	}
	return cursor
}

// genCastling emits the kingside/queenside castling move for mover if the corresponding right is
// still held and the squares between king and rook are empty. Whether the king starts, passes
// through, or ends up in check is left to DefendersKingIsInCheck after MakeMove.
func genCastling(p *Position, mover Color, occ Bitboard, stack []Move, cursor int) int {
	rights := p.Castling()

	kingFrom, kingTo, queenTo := E1, G1, C1
	kingSideGap := BitMask(F1) | BitMask(G1)
	queenSideGap := BitMask(D1) | BitMask(C1) | BitMask(B1)
	kingSideRight, queenSideRight := WhiteKingSideCastle, WhiteQueenSideCastle
	if mover == Black {
		kingFrom, kingTo, queenTo = E8, G8, C8
		kingSideGap = BitMask(F8) | BitMask(G8)
		queenSideGap = BitMask(D8) | BitMask(C8) | BitMask(B8)
		kingSideRight, queenSideRight = BlackKingSideCastle, BlackQueenSideCastle
	}

	if rights.IsAllowed(kingSideRight) && occ&kingSideGap == EmptyBitboard {
		stack[cursor] = NewMove(kingFrom, kingTo, King, NoPiece, NoPiece, MoveCastleKingSide)
		cursor++
	}
	if rights.IsAllowed(queenSideRight) && occ&queenSideGap == EmptyBitboard {
		stack[cursor] = NewMove(kingFrom, queenTo, King, NoPiece, NoPiece, MoveCastleQueenSide)
		cursor++
	}
	return cursor
}
